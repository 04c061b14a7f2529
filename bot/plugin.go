// Package bot is the mention plugin itself: admin commands over the member
// store plus the per-message hook that rewrites nickname mentions.
package bot

import (
	"log/slog"
	"time"

	"mentionbot/contract"
	"mentionbot/repositories"
)

// PluginName scopes the persistent data directory on the host.
const PluginName = "mentionbot"

type Plugin struct {
	log      *slog.Logger
	members  repositories.IMemberRepository
	history  repositories.IHistoryRepository
	events   chan<- repositories.MentionRecord
	triggers []string
	prefix   string
	started  time.Time
}

// New wires the plugin. history and events may be nil; mention recording is
// then disabled and the history commands report as much.
func New(
	log *slog.Logger,
	members repositories.IMemberRepository,
	history repositories.IHistoryRepository,
	events chan<- repositories.MentionRecord,
	triggers []string,
	prefix string,
) *Plugin {
	return &Plugin{
		log:      log,
		members:  members,
		history:  history,
		events:   events,
		triggers: triggers,
		prefix:   prefix,
		started:  time.Now(),
	}
}

// Register binds every command and the group-message hook to the host.
// Mutating commands are admin-only; enforcement is the host's job.
func (p *Plugin) Register(host contract.Host) {
	host.RegisterCommand("member", contract.PermissionAdmin, p.cmdMember)
	host.RegisterCommand("rm_nick", contract.PermissionAdmin, p.cmdRemoveNickname)
	host.RegisterCommand("rm_member", contract.PermissionAdmin, p.cmdRemoveMember)
	host.RegisterCommand("nick_path", contract.PermissionAdmin, p.cmdPath)
	host.RegisterCommand("list_members", contract.PermissionAdmin, p.cmdListMembers)
	host.RegisterCommand("find_mention", contract.PermissionAdmin, p.cmdFindMention)
	host.RegisterCommand("mention_stats", contract.PermissionAdmin, p.cmdMentionStats)
	host.RegisterCommand("status", contract.PermissionAdmin, p.cmdStatus)
	host.OnGroupMessage(p.onGroupMessage)
}
