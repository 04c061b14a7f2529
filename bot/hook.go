package bot

import (
	"context"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"mentionbot/contract"
	"mentionbot/domain"
	"mentionbot/lookup"
	"mentionbot/repositories"
	"mentionbot/rewrite"
)

// onGroupMessage runs once per inbound group message. Command-prefixed
// messages are ignored here; the command dispatcher handles them. On a
// nickname or broadcast hit it returns the mention chain; otherwise nil and
// the host emits nothing.
func (p *Plugin) onGroupMessage(ctx context.Context, ev contract.Event) ([]domain.Segment, error) {
	text := plainText(ev)
	if text == "" || strings.HasPrefix(text, p.prefix) {
		return nil, nil
	}
	gid := ev.GroupID()
	if gid == "" {
		return nil, nil
	}

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}

	engine, err := lookup.NewEngine(p.members.MembersInGroup(gid), p.triggers)
	if err != nil {
		return nil, err
	}
	matches := engine.Resolve(text)
	if len(matches) == 0 {
		return nil, nil
	}

	info := whatlanggo.Detect(text)
	p.log.Debug("Nickname hit",
		"group", gid,
		"members", len(matches),
		"lang", info.Lang.Iso6391())

	sids := lookup.SIDs(matches)
	p.record(gid, sids, text)
	return rewrite.Chain(sids, text), nil
}

// record hands the rewrite to the history sink without blocking the message
// path. A full buffer drops the record and logs it.
func (p *Plugin) record(gid string, sids []string, text string) {
	if p.events == nil {
		return
	}
	rec := repositories.MentionRecord{
		ID:      uuid.New(),
		GroupID: gid,
		SIDs:    sids,
		Text:    text,
		At:      time.Now().UTC(),
	}
	select {
	case p.events <- rec:
	default:
		p.log.Warn("History buffer full, dropping mention record", "group", gid)
	}
}

// plainText extracts the message text, preferring structured segments and
// falling back to stripping inline mention markup from the raw string.
func plainText(ev contract.Event) string {
	if text := domain.PlainText(ev.Segments()); text != "" {
		return text
	}
	return domain.StripMentionMarkup(ev.Raw())
}
