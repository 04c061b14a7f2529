// Package lookup resolves which members a group message refers to by
// nickname, and detects broadcast trigger phrases.
package lookup

import (
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"

	"mentionbot/domain"
)

// Engine is built per handled message from the group's member snapshot, so
// store reloads take effect immediately. Matching is plain substring search
// over the case-folded text; nicknames may be partial names or contain
// punctuation, so no tokenization happens.
type Engine struct {
	members  []domain.Member
	triggers []string
	matcher  *goahocorasick.Machine
	owners   map[string][]owner
}

// owner ties a folded nickname back to a member carrying it. pos is the
// member's position in store iteration order and breaks index ties.
type owner struct {
	sid string
	pos int
}

// Match is one resolved member with the earliest rune index at which any of
// its nicknames occurs.
type Match struct {
	SID   string
	Index int
}

// NewEngine indexes every non-empty nickname of every member with a
// non-empty sid into one Aho-Corasick automaton.
func NewEngine(members []domain.Member, triggers []string) (*Engine, error) {
	e := &Engine{
		members: members,
		owners:  make(map[string][]owner),
	}
	for _, t := range triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			e.triggers = append(e.triggers, t)
		}
	}

	var patterns [][]rune
	for pos, m := range members {
		if m.SID == "" {
			continue
		}
		for _, raw := range m.Nicknames {
			nick := strings.ToLower(domain.NormalizeNickname(raw))
			if nick == "" {
				continue
			}
			if _, seen := e.owners[nick]; !seen {
				patterns = append(patterns, []rune(nick))
			}
			e.owners[nick] = append(e.owners[nick], owner{sid: m.SID, pos: pos})
		}
	}
	if len(patterns) > 0 {
		m := new(goahocorasick.Machine)
		if err := m.Build(patterns); err != nil {
			return nil, err
		}
		e.matcher = m
	}
	return e, nil
}

// Resolve returns the matched member ids ordered by first occurrence.
// A broadcast trigger anywhere in the text short-circuits to every member
// of the snapshot, in store iteration order.
func (e *Engine) Resolve(text string) []Match {
	folded := strings.ToLower(text)

	if e.broadcast(folded) {
		out := make([]Match, 0, len(e.members))
		for _, m := range e.members {
			if m.SID == "" {
				continue
			}
			out = append(out, Match{SID: m.SID})
		}
		return out
	}

	if e.matcher == nil {
		return nil
	}
	runes := []rune(folded)
	if len(runes) == 0 {
		return nil
	}

	// Minimum first-occurrence rune index per sid, across all nicknames.
	best := make(map[string]int)
	order := make(map[string]int)
	for _, term := range e.matcher.MultiPatternSearch(runes, false) {
		for _, ow := range e.owners[string(term.Word)] {
			if idx, ok := best[ow.sid]; !ok || term.Pos < idx {
				best[ow.sid] = term.Pos
			}
			if p, ok := order[ow.sid]; !ok || ow.pos < p {
				order[ow.sid] = ow.pos
			}
		}
	}
	if len(best) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(best))
	for sid, idx := range best {
		matches = append(matches, Match{SID: sid, Index: idx})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Index != matches[j].Index {
			return matches[i].Index < matches[j].Index
		}
		return order[matches[i].SID] < order[matches[j].SID]
	})
	return matches
}

func (e *Engine) broadcast(folded string) bool {
	for _, t := range e.triggers {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// SIDs flattens matches into the id list fed to the rewriter.
func SIDs(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.SID
	}
	return out
}
