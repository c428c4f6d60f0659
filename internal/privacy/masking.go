package privacy

import (
	"net/url"
	"strings"

	"icrelay/internal/constants"
)

// MaskSnowflake masks a chat platform id showing only the last 4 digits
// Example: "112233445566778899" -> "**************8899"
func MaskSnowflake(id string) string {
	if id == "" {
		return ""
	}
	return maskString(id, constants.DefaultIDMaskLength)
}

// MaskUserID masks a user identifier
// Example: "user123456" -> "******3456"
func MaskUserID(userID string) string {
	if userID == "" {
		return ""
	}
	return maskString(userID, constants.DefaultIDMaskLength)
}

// MaskChannelID masks a channel identifier. Named routes such as
// "ic-events" are not secret and pass through unchanged.
func MaskChannelID(channelID string) string {
	if channelID == "" {
		return ""
	}
	if !isNumeric(channelID) {
		return channelID
	}
	return MaskSnowflake(channelID)
}

// MaskMessageID masks a message identifier
func MaskMessageID(messageID string) string {
	return MaskSnowflake(messageID)
}

// MaskToken hides everything but a short prefix of a credential
// Example: "MTIzNDU2.abc.def" -> "MTI***"
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 6 {
		return strings.Repeat("*", len(token))
	}
	return token[:3] + "***"
}

// MaskURL keeps scheme and host, drops the query and collapses long paths
// to their last segment
// Example: "https://cdn.example.com/a/b/c.png?sig=x" -> "https://cdn.example.com/a/b/c.png"
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return truncate(rawURL, constants.DefaultURLPreviewLength)
	}

	p := u.EscapedPath()
	if len(p) > constants.DefaultURLPreviewLength {
		p = "/..." + p[strings.LastIndex(p, "/"):]
	}
	return u.Scheme + "://" + u.Host + p
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			masked[k] = v
			continue
		}
		switch k {
		case "user_id", "userId", "author_id":
			masked[k] = MaskUserID(s)
		case "channel_id", "channelId", "admin_channel_id", "thread_id":
			masked[k] = MaskChannelID(s)
		case "message_id", "messageId", "msg_id":
			masked[k] = MaskMessageID(s)
		case "token", "secret", "authorization":
			masked[k] = MaskToken(s)
		case "url", "image_url":
			masked[k] = MaskURL(s)
		default:
			masked[k] = v
		}
	}

	return masked
}
