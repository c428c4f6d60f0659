package privacy

import "context"

type contextKey string

const verboseKey contextKey = "verbose"

// WithVerbose marks the context for verbose logging. Log fields built from a
// verbose context carry raw identifiers.
func WithVerbose(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, verboseKey, verbose)
}

// IsVerbose reports whether ctx was marked by WithVerbose(ctx, true)
func IsVerbose(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	verbose, _ := ctx.Value(verboseKey).(bool)
	return verbose
}

// ChannelIDForLog returns the raw id under verbose logging, MaskChannelID otherwise
func ChannelIDForLog(ctx context.Context, channelID string) string {
	if IsVerbose(ctx) {
		return channelID
	}
	return MaskChannelID(channelID)
}

// UserIDForLog returns the raw id under verbose logging, MaskUserID otherwise
func UserIDForLog(ctx context.Context, userID string) string {
	if IsVerbose(ctx) {
		return userID
	}
	return MaskUserID(userID)
}

// MessageIDForLog returns the raw id under verbose logging, MaskMessageID otherwise
func MessageIDForLog(ctx context.Context, messageID string) string {
	if IsVerbose(ctx) {
		return messageID
	}
	return MaskMessageID(messageID)
}

// URLForLog returns the raw URL under verbose logging, MaskURL otherwise
func URLForLog(ctx context.Context, rawURL string) string {
	if IsVerbose(ctx) {
		return rawURL
	}
	return MaskURL(rawURL)
}
