// Package domain contains core concepts of the mention bot.
// This file defines the member record binding a platform identifier
// to its nicknames within one group.
package domain

import "strings"

// Member binds a platform member identifier to the nicknames that resolve to
// it within one group. At most one record exists per (sid, group) pair.
// The JSON field names are the on-disk contract of members.json.
type Member struct {
	Nicknames []string `json:"nickname"`
	SID       string   `json:"sid"`
	GroupID   string   `json:"group_id"`
}

// NormalizeNickname trims surrounding whitespace. Nicknames compare
// case-sensitively after trimming.
func NormalizeNickname(s string) string {
	return strings.TrimSpace(s)
}

// HasNickname reports whether the record carries the given nickname.
// The argument must already be normalized.
func (m Member) HasNickname(nickname string) bool {
	for _, n := range m.Nicknames {
		if NormalizeNickname(n) == nickname {
			return true
		}
	}
	return false
}

// Clone returns a copy whose nickname slice is detached from the original.
func (m Member) Clone() Member {
	out := m
	out.Nicknames = append([]string(nil), m.Nicknames...)
	return out
}
