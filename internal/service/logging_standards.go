package service

// Logging Standards for icrelay
//
// This file defines standard field names and patterns
// to keep logging consistent across the application.

// Standard Field Names
// Use these exact field names for consistency across all logging calls
const (
	// Core identifiers
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"
	LogFieldMessageID = "message_id"
	LogFieldChannelID = "channel_id"
	LogFieldUserID    = "user_id"

	// Command and relay fields
	LogFieldCommand     = "command"
	LogFieldDestination = "destination"
	LogFieldRoute       = "route"
	LogFieldOutcome     = "outcome"
	LogFieldContent     = "content"
	LogFieldPlatform    = "platform"

	// Performance and metrics
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"

	// Network and external services
	LogFieldRemoteIP   = "remote_ip"
	LogFieldStatusCode = "status_code"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldUserAgent  = "user_agent"
	LogFieldSize       = "size_bytes"

	// Error and debugging
	LogFieldErrorCode = "error_code"
)

// Log Level Usage Guidelines
//
// DEBUG: ignored messages, unknown commands, permission denials.
// INFO: startup/shutdown, accepted commands, delivered relays.
// WARN: rejected relays (empty input, missing channel, image failures), failed cleanups.
// ERROR: failed public sends, failed admin mirrors, recovered panics.

// Example Usage:
//
// logger.WithFields(logrus.Fields{
//     LogFieldCommand:     "relay-public",
//     LogFieldDestination: dest.Name,
//     LogFieldOutcome:     result.Outcome,
// }).Info("Relay delivered")
