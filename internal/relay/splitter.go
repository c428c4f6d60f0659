package relay

import (
	"regexp"
	"strings"
)

var (
	// looseImageURL finds candidate image links anywhere in free text
	looseImageURL = regexp.MustCompile(`https?://\S+\.(?:jpg|jpeg|png|gif)`)

	// strictImageURL must match the whole candidate before it is fetched
	strictImageURL = regexp.MustCompile(`^https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+\.(?:jpg|jpeg|png|gif)$`)
)

// Split extracts at most one image URL from text.
//
// Only the first loose match is considered. It is removed from the content
// once, and only when it also passes strict validation; otherwise it stays in
// the content as ordinary text. Content is always trimmed.
func Split(text string) (imageURL string, content string) {
	candidate := looseImageURL.FindString(text)
	if candidate == "" || !IsImageURL(candidate) {
		return "", strings.TrimSpace(text)
	}
	return candidate, strings.TrimSpace(strings.Replace(text, candidate, "", 1))
}

// IsImageURL applies strict image URL validation
func IsImageURL(candidate string) bool {
	return strictImageURL.MatchString(candidate)
}
