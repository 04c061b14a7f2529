//go:generate go run go.uber.org/mock/mockgen -source=member.go -destination=../mocks/mock_member_repository.go -package=mocks
package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"

	"mentionbot/domain"
)

const memberFile = "members.json"

type IMemberRepository interface {
	WaitReady(ctx context.Context) error
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	Path() string
	FindBySidAndGroup(sid, groupID string) (domain.Member, bool)
	FindAllByNickname(nickname, groupID string) []domain.Member
	MembersInGroup(groupID string) []domain.Member
	UpsertNickname(sid, groupID, nickname string)
	RemoveNickname(nickname, groupID string) int
	RemoveMembersByNickname(nickname, groupID string) int
}

// MemberRepository owns the member collection backed by members.json.
// One mutex serializes every load, save and mutation so concurrent handlers
// never observe an interleaved read/write. Handlers reload before acting to
// tolerate external edits of the file.
type MemberRepository struct {
	mu      sync.Mutex
	path    string
	log     *slog.Logger
	members []domain.Member

	ready chan struct{}
}

// NewMemberRepository starts loading members.json in the background; callers
// await the initial load through WaitReady before their first access.
func NewMemberRepository(dataDir string, log *slog.Logger) *MemberRepository {
	r := &MemberRepository{
		path:  filepath.Join(dataDir, memberFile),
		log:   log,
		ready: make(chan struct{}),
	}
	go func() {
		defer close(r.ready)
		if err := r.Load(context.Background()); err != nil {
			r.log.Error("Initial member load failed", "path", r.path, "err", err)
		}
	}()
	return r
}

// WaitReady blocks until the initial background load has finished.
func (r *MemberRepository) WaitReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ready:
		return nil
	}
}

// Load replaces the in-memory collection with the file contents. A missing
// file yields an empty collection. A corrupted file is logged and reset to
// empty rather than retried (accepted data loss).
func (r *MemberRepository) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.members = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", r.path, err)
	}

	var members []domain.Member
	if err := json.Unmarshal(data, &members); err != nil {
		r.log.Error("Members file is corrupted, resetting collection", "path", r.path, "err", err)
		r.members = nil
		return nil
	}
	r.members = members
	return nil
}

// Save serializes the full collection and atomically replaces the file via
// temp-file-then-rename. A failed write may leave the temp file behind but
// never corrupts the live file.
func (r *MemberRepository) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.members
	if records == nil {
		records = []domain.Member{}
	}

	// 2-space indent, non-ASCII preserved: the file is hand-editable.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode members: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

func (r *MemberRepository) Path() string {
	return r.path
}

// FindBySidAndGroup returns the unique record for the (sid, group) pair.
func (r *MemberRepository) FindBySidAndGroup(sid, groupID string) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.SID == sid && m.GroupID == groupID {
			return m.Clone(), true
		}
	}
	return domain.Member{}, false
}

// FindAllByNickname returns every record in the group carrying an exact
// (trimmed) nickname match.
func (r *MemberRepository) FindAllByNickname(nickname, groupID string) []domain.Member {
	nickname = domain.NormalizeNickname(nickname)
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := lo.Filter(r.members, func(m domain.Member, _ int) bool {
		return m.GroupID == groupID && m.HasNickname(nickname)
	})
	return lo.Map(matches, func(m domain.Member, _ int) domain.Member { return m.Clone() })
}

// MembersInGroup returns a snapshot of the group's records in insertion
// order. Lookup tie-breaking relies on this ordering.
func (r *MemberRepository) MembersInGroup(groupID string) []domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := lo.Filter(r.members, func(m domain.Member, _ int) bool {
		return m.GroupID == groupID
	})
	return lo.Map(matches, func(m domain.Member, _ int) domain.Member { return m.Clone() })
}

// UpsertNickname creates the record when absent, otherwise appends the
// nickname unless already present. Idempotent per nickname value.
func (r *MemberRepository) UpsertNickname(sid, groupID, nickname string) {
	nickname = domain.NormalizeNickname(nickname)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		m := &r.members[i]
		if m.SID != sid || m.GroupID != groupID {
			continue
		}
		if m.HasNickname(nickname) {
			return
		}
		m.Nicknames = append(m.Nicknames, nickname)
		return
	}
	r.members = append(r.members, domain.Member{
		Nicknames: []string{nickname},
		SID:       sid,
		GroupID:   groupID,
	})
}

// RemoveNickname strips the nickname from every matching record in the
// group and returns how many records were touched. Records are never
// deleted here, even when their nickname list becomes empty.
func (r *MemberRepository) RemoveNickname(nickname, groupID string) int {
	nickname = domain.NormalizeNickname(nickname)
	r.mu.Lock()
	defer r.mu.Unlock()
	touched := 0
	for i := range r.members {
		m := &r.members[i]
		if m.GroupID != groupID {
			continue
		}
		kept := lo.Filter(m.Nicknames, func(n string, _ int) bool {
			return domain.NormalizeNickname(n) != nickname
		})
		if len(kept) != len(m.Nicknames) {
			m.Nicknames = kept
			touched++
		}
	}
	return touched
}

// RemoveMembersByNickname deletes every record in the group carrying the
// nickname and returns how many were removed.
func (r *MemberRepository) RemoveMembersByNickname(nickname, groupID string) int {
	nickname = domain.NormalizeNickname(nickname)
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.members)
	r.members = lo.Reject(r.members, func(m domain.Member, _ int) bool {
		return m.GroupID == groupID && m.HasNickname(nickname)
	})
	return before - len(r.members)
}
