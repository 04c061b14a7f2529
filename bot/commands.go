package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"mentionbot/contract"
	"mentionbot/domain"
	"mentionbot/observability"
)

const (
	replyGroupOnly     = "This command only works in a group chat."
	replyNeedMention   = "Mention exactly one member to bind the nickname to."
	replyBadNickname   = "Invalid nickname."
	replyNotFound      = "Not found."
	replyNoHistory     = "Mention history is disabled."
	replySearchMissing = "Give me something to search for."
)

// refresh reloads the member store so concurrent handlers and external file
// edits are picked up before acting.
func (p *Plugin) refresh(ctx context.Context) error {
	if err := p.members.WaitReady(ctx); err != nil {
		return err
	}
	return p.members.Load(ctx)
}

func (p *Plugin) cmdMember(ctx context.Context, ev contract.Event, arg string) (string, error) {
	if err := p.refresh(ctx); err != nil {
		return "", err
	}
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	sids := domain.MentionSIDs(ev.Segments())
	if len(sids) != 1 {
		return replyNeedMention, nil
	}
	nickname := domain.NormalizeNickname(arg)
	if !validNickname(nickname) {
		return replyBadNickname, nil
	}

	p.members.UpsertNickname(sids[0], gid, nickname)
	if err := p.members.Save(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Recorded: %s -> %s", nickname, sids[0]), nil
}

func (p *Plugin) cmdRemoveNickname(ctx context.Context, ev contract.Event, arg string) (string, error) {
	if err := p.refresh(ctx); err != nil {
		return "", err
	}
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	nickname := domain.NormalizeNickname(arg)
	if !validNickname(nickname) {
		return replyBadNickname, nil
	}

	touched := p.members.RemoveNickname(nickname, gid)
	if touched == 0 {
		return replyNotFound, nil
	}
	if err := p.members.Save(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed nickname %q (records touched: %d)", nickname, touched), nil
}

func (p *Plugin) cmdRemoveMember(ctx context.Context, ev contract.Event, arg string) (string, error) {
	if err := p.refresh(ctx); err != nil {
		return "", err
	}
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	nickname := domain.NormalizeNickname(arg)
	if !validNickname(nickname) {
		return replyBadNickname, nil
	}

	removed := p.members.RemoveMembersByNickname(nickname, gid)
	if removed == 0 {
		return replyNotFound, nil
	}
	if err := p.members.Save(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted member records: %d", removed), nil
}

func (p *Plugin) cmdPath(ctx context.Context, ev contract.Event, arg string) (string, error) {
	return fmt.Sprintf("Member data file: %s", p.members.Path()), nil
}

func (p *Plugin) cmdListMembers(ctx context.Context, ev contract.Event, arg string) (string, error) {
	if err := p.refresh(ctx); err != nil {
		return "", err
	}
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	members := p.members.MembersInGroup(gid)
	if len(members) == 0 {
		return "No member records in this group.", nil
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"SID", "Nicknames"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, m := range members {
		table.Append([]string{m.SID, strings.Join(m.Nicknames, ", ")})
	}
	table.Render()
	return buf.String(), nil
}

func (p *Plugin) cmdFindMention(ctx context.Context, ev contract.Event, arg string) (string, error) {
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	if p.history == nil {
		return replyNoHistory, nil
	}
	terms := strings.TrimSpace(arg)
	if terms == "" {
		return replySearchMissing, nil
	}

	records, err := p.history.Search(ctx, gid, terms, 5)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return replyNotFound, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hits for %q:\n", terms)
	for _, rec := range records {
		fmt.Fprintf(&b, "%s | @%s | %s\n",
			rec.At.Format("2006-01-02 15:04"),
			strings.Join(rec.SIDs, " @"),
			rec.Text,
		)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (p *Plugin) cmdMentionStats(ctx context.Context, ev contract.Event, arg string) (string, error) {
	gid := ev.GroupID()
	if gid == "" {
		return replyGroupOnly, nil
	}
	if p.history == nil {
		return replyNoHistory, nil
	}

	records, err := p.history.Recent(gid, 10)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "No mention activity recorded for this group.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d rewrites:\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "%s | %d member(s) | %s\n",
			rec.At.Format("2006-01-02 15:04"),
			len(rec.SIDs),
			rec.Text,
		)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (p *Plugin) cmdStatus(ctx context.Context, ev contract.Event, arg string) (string, error) {
	return observability.Report(p.started).String(), nil
}
