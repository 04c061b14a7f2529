package domain

import (
	"regexp"
	"strings"
)

// Segment is one element of a structured message chain exchanged with the
// host. The variant set is closed: hosts deliver text, member mentions, and
// opaque parts the bot does not interpret (images, stickers...).
type Segment interface {
	isSegment()
}

// Text is a plain text segment.
type Text struct {
	Content string
}

// Mention explicitly references one member by its platform identifier.
type Mention struct {
	SID string
}

// Other is any segment variant the bot leaves untouched.
type Other struct {
	Kind string
}

func (Text) isSegment()    {}
func (Mention) isSegment() {}
func (Other) isSegment()   {}

var inlineMentionPattern = regexp.MustCompile(`\[CQ:at,[^\]]+\]`)

// PlainText concatenates the text segments of a message chain and trims the
// result. It returns "" when the chain carries no text.
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if t, ok := seg.(Text); ok {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// StripMentionMarkup removes inline mention markup from a raw fallback
// string. Some platforms only deliver a flat string in which mentions
// appear as [CQ:at,...] tokens.
func StripMentionMarkup(raw string) string {
	return strings.TrimSpace(inlineMentionPattern.ReplaceAllString(raw, ""))
}

// MentionSIDs collects the member identifiers of every mention segment, in
// chain order.
func MentionSIDs(segments []Segment) []string {
	var sids []string
	for _, seg := range segments {
		if m, ok := seg.(Mention); ok {
			sids = append(sids, m.SID)
		}
	}
	return sids
}
