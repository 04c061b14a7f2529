// Package rewrite builds the outgoing mention chain.
package rewrite

import "mentionbot/domain"

// Host rendering layers collapse ordinary spaces around mention segments and
// may re-parse leading whitespace of the text block. The separator is
// therefore a non-breaking space and the body starts with a zero-width
// space; both byte sequences are contractual.
const (
	separator  = " "
	bodyPrefix = "​\n"
)

// Chain builds the outgoing message for an ordered member id list: one
// mention per id, each followed by a NBSP text segment, with the final
// separator replaced by the original text block. Returns nil for an empty
// id list, never an empty chain otherwise.
func Chain(sids []string, original string) []domain.Segment {
	if len(sids) == 0 {
		return nil
	}
	chain := make([]domain.Segment, 0, 2*len(sids))
	for _, sid := range sids {
		chain = append(chain,
			domain.Mention{SID: sid},
			domain.Text{Content: separator},
		)
	}
	chain[len(chain)-1] = domain.Text{Content: bodyPrefix + original}
	return chain
}
