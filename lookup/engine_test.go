package lookup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mentionbot/domain"
)

var defaultTriggers = []string{"都来康", "都来看"}

func members(ms ...domain.Member) []domain.Member { return ms }

func TestEngine_FirstOccurrenceOrdering(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"cat"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"dog"}},
	), defaultTriggers)
	req.NoError(err)

	matches := engine.Resolve("the dog chased the cat")
	req.Equal([]string{"B", "A"}, SIDs(matches))
	req.Less(matches[0].Index, matches[1].Index)
}

func TestEngine_MinimumIndexAcrossNicknames(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"feline", "cat"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"dog"}},
	), defaultTriggers)
	req.NoError(err)

	// "cat" appears before "dog", "feline" after: A's minimum index wins.
	matches := engine.Resolve("cat and dog saw a feline")
	req.Equal([]string{"A", "B"}, SIDs(matches))
}

func TestEngine_TieBrokenByStoreOrder(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"ca"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"cat"}},
	), defaultTriggers)
	req.NoError(err)

	// Both nicknames start at index 0: store iteration order decides.
	matches := engine.Resolve("cat!")
	req.Equal([]string{"A", "B"}, SIDs(matches))
}

func TestEngine_NicknameInsideAnotherMatch(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"cat"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"at"}},
	), defaultTriggers)
	req.NoError(err)

	// "at" only occurs as a suffix of "cat": both members match, each at
	// its own first-occurrence index.
	matches := engine.Resolve("the cat")
	req.Equal([]string{"A", "B"}, SIDs(matches))
	req.Equal(4, matches[0].Index)
	req.Equal(5, matches[1].Index)
}

func TestEngine_CaseFolding(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"Cat"}},
	), defaultTriggers)
	req.NoError(err)

	req.Equal([]string{"A"}, SIDs(engine.Resolve("THE CAT SLEEPS")))
}

func TestEngine_RuneIndexNotByteIndex(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"猫猫"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"b"}},
	), defaultTriggers)
	req.NoError(err)

	// 猫猫 starts at rune 2, "b" at rune 5; byte offsets would flip them.
	matches := engine.Resolve("喊一猫猫和b")
	req.Equal([]string{"A", "B"}, SIDs(matches))
}

func TestEngine_BroadcastTrigger(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"cat"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"dog"}},
		domain.Member{SID: "C", GroupID: "g1", Nicknames: nil},
	), defaultTriggers)
	req.NoError(err)

	// Every member with a sid, store order, nickname content irrelevant.
	matches := engine.Resolve("大家都来康一下")
	req.Equal([]string{"A", "B", "C"}, SIDs(matches))
}

func TestEngine_NoMatch(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"cat"}},
	), defaultTriggers)
	req.NoError(err)

	req.Empty(engine.Resolve("nothing relevant here"))
	req.Empty(engine.Resolve(""))
}

func TestEngine_InertRecords(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: nil},
		domain.Member{SID: "", GroupID: "g1", Nicknames: []string{"cat"}},
	), defaultTriggers)
	req.NoError(err)

	req.Empty(engine.Resolve("a cat walked by"))
}

func TestEngine_SharedNicknameMatchesAllOwners(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(members(
		domain.Member{SID: "A", GroupID: "g1", Nicknames: []string{"cat"}},
		domain.Member{SID: "B", GroupID: "g1", Nicknames: []string{"cat"}},
	), defaultTriggers)
	req.NoError(err)

	// Same index for both owners: store order decides.
	matches := engine.Resolve("cat")
	req.Equal([]string{"A", "B"}, SIDs(matches))
}

func TestEngine_EmptySnapshot(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(nil, defaultTriggers)
	req.NoError(err)

	req.Empty(engine.Resolve("都来康"))
	req.Empty(engine.Resolve("cat"))
}
