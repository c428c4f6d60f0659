package service

import (
	"context"

	"icrelay/internal/privacy"
	"icrelay/internal/tracing"

	"github.com/sirupsen/logrus"
)

// WithVerbose marks the context for verbose logging
func WithVerbose(ctx context.Context, verbose bool) context.Context {
	return privacy.WithVerbose(ctx, verbose)
}

// IsVerboseLogging checks if verbose logging is enabled from context
func IsVerboseLogging(ctx context.Context) bool {
	return privacy.IsVerbose(ctx)
}

// SanitizeContent completely hides message content for privacy
func SanitizeContent(content string) string {
	if content == "" {
		return ""
	}
	return "[hidden]"
}

// LogWithContext creates a logger entry carrying the request id
func LogWithContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	entry := logger.WithField("verbose", IsVerboseLogging(ctx))
	if requestID := tracing.GetRequestID(ctx); requestID != "" {
		entry = entry.WithField(LogFieldRequestID, requestID)
	}
	return entry
}

// LogCommand logs an accepted chat command with privacy controls.
// Raw ids and the argument text appear only in verbose mode.
func LogCommand(ctx context.Context, logger *logrus.Logger, command string, msg commandSource, args string) {
	fields := logrus.Fields{
		LogFieldCommand:   command,
		LogFieldChannelID: privacy.MaskChannelID(msg.channelID),
		LogFieldMessageID: privacy.MaskMessageID(msg.messageID),
		LogFieldUserID:    privacy.MaskUserID(msg.authorID),
		LogFieldPlatform:  "discord",
	}
	if IsVerboseLogging(ctx) {
		fields[LogFieldChannelID] = msg.channelID
		fields[LogFieldMessageID] = msg.messageID
		fields[LogFieldUserID] = msg.authorID
		fields[LogFieldContent] = args
	} else {
		fields[LogFieldContent] = SanitizeContent(args)
	}
	LogWithContext(ctx, logger).WithFields(fields).Info("Processing command")
}

// commandSource is the subset of an inbound message that command logs mention
type commandSource struct {
	channelID string
	messageID string
	authorID  string
}
