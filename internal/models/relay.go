package models

// Outcome is the terminal state of one relay invocation
type Outcome string

const (
	OutcomeDelivered        Outcome = "delivered"
	OutcomeNoChannel        Outcome = "no_channel"
	OutcomeImageFetchFailed Outcome = "image_fetch_failed"
	OutcomeEmptyInput       Outcome = "empty_input"
	OutcomeInternalError    Outcome = "internal_error"
)

// RelayRequest is built per invocation and discarded afterwards
type RelayRequest struct {
	Text     string
	ImageURL string
	Content  string
	Author   Identity
	// Origin is nil for callers without a message to acknowledge or delete
	Origin *Origin
}

// RelayResult is the explicit return contract of the relay engine
type RelayResult struct {
	Outcome         Outcome
	Err             error
	PublicMessageID string
	AdminMessageID  string
	AckMessageID    string
	// MirrorErr records a failed admin copy; it never changes Outcome
	MirrorErr error
}

// OK reports whether the public delivery happened
func (r RelayResult) OK() bool {
	return r.Outcome == OutcomeDelivered
}
