package repositories

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMemberRepo(t *testing.T) (*MemberRepository, string) {
	t.Helper()
	dir := t.TempDir()
	repo := NewMemberRepository(dir, slog.Default())
	require.NoError(t, repo.WaitReady(context.Background()))
	return repo, dir
}

func TestMemberRepository_UpsertIsIdempotent(t *testing.T) {
	req := require.New(t)
	repo, _ := newTestMemberRepo(t)

	repo.UpsertNickname("1001", "g1", "cat")
	repo.UpsertNickname("1001", "g1", "cat")
	repo.UpsertNickname("1001", "g1", " cat ")

	rec, ok := repo.FindBySidAndGroup("1001", "g1")
	req.True(ok)
	req.Equal([]string{"cat"}, rec.Nicknames)
}

func TestMemberRepository_SaveLoadRoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	repo := NewMemberRepository(dir, slog.Default())
	req.NoError(repo.WaitReady(ctx))
	repo.UpsertNickname("1001", "g1", "cat")
	repo.UpsertNickname("1002", "g1", "dog")
	repo.UpsertNickname("1002", "g1", "狗狗")
	repo.UpsertNickname("1001", "g2", "cat")
	req.NoError(repo.Save(ctx))

	reloaded := NewMemberRepository(dir, slog.Default())
	req.NoError(reloaded.WaitReady(ctx))

	g1 := reloaded.MembersInGroup("g1")
	req.Len(g1, 2)
	req.Equal("1001", g1[0].SID)
	req.Equal("1002", g1[1].SID)
	req.Equal([]string{"dog", "狗狗"}, g1[1].Nicknames)

	g2 := reloaded.MembersInGroup("g2")
	req.Len(g2, 1)

	// Non-ASCII is written verbatim, indented, without a leftover temp file.
	data, err := os.ReadFile(filepath.Join(dir, "members.json"))
	req.NoError(err)
	req.Contains(string(data), "狗狗")
	req.Contains(string(data), "\n  {")
	_, err = os.Stat(filepath.Join(dir, "members.json.tmp"))
	req.True(os.IsNotExist(err))
}

func TestMemberRepository_RemoveNicknameKeepsRecord(t *testing.T) {
	req := require.New(t)
	repo, _ := newTestMemberRepo(t)

	repo.UpsertNickname("1001", "g1", "cat")
	repo.UpsertNickname("1001", "g1", "kitty")
	repo.UpsertNickname("1002", "g1", "cat")

	touched := repo.RemoveNickname("cat", "g1")
	req.Equal(2, touched)

	rec, ok := repo.FindBySidAndGroup("1001", "g1")
	req.True(ok)
	req.Equal([]string{"kitty"}, rec.Nicknames)

	// The record with an emptied nickname list survives, inert.
	rec, ok = repo.FindBySidAndGroup("1002", "g1")
	req.True(ok)
	req.Empty(rec.Nicknames)

	req.Zero(repo.RemoveNickname("cat", "g1"))
}

func TestMemberRepository_RemoveMembersDeletesRecords(t *testing.T) {
	req := require.New(t)
	repo, _ := newTestMemberRepo(t)

	repo.UpsertNickname("1001", "g1", "cat")
	repo.UpsertNickname("1002", "g1", "cat")
	repo.UpsertNickname("1003", "g1", "dog")

	removed := repo.RemoveMembersByNickname("cat", "g1")
	req.Equal(2, removed)

	_, ok := repo.FindBySidAndGroup("1001", "g1")
	req.False(ok)
	_, ok = repo.FindBySidAndGroup("1003", "g1")
	req.True(ok)

	req.Zero(repo.RemoveMembersByNickname("cat", "g1"))
}

func TestMemberRepository_CrossGroupIsolation(t *testing.T) {
	req := require.New(t)
	repo, _ := newTestMemberRepo(t)

	repo.UpsertNickname("1001", "g1", "cat")

	req.Empty(repo.FindAllByNickname("cat", "g2"))
	req.Zero(repo.RemoveNickname("cat", "g2"))
	req.Zero(repo.RemoveMembersByNickname("cat", "g2"))

	req.Len(repo.FindAllByNickname("cat", "g1"), 1)
}

func TestMemberRepository_CorruptedFileResets(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "members.json")
	req.NoError(os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewMemberRepository(dir, slog.Default())
	req.NoError(repo.WaitReady(ctx))
	req.Empty(repo.MembersInGroup("g1"))

	// The store stays usable after the reset.
	repo.UpsertNickname("1001", "g1", "cat")
	req.NoError(repo.Save(ctx))
	data, err := os.ReadFile(path)
	req.NoError(err)
	req.True(strings.HasPrefix(string(data), "["))
}

func TestMemberRepository_MissingFileIsEmpty(t *testing.T) {
	req := require.New(t)
	repo, _ := newTestMemberRepo(t)
	req.NoError(repo.Load(context.Background()))
	req.Empty(repo.MembersInGroup("g1"))
}

func TestMemberRepository_SaveEmptyCollectionWritesArray(t *testing.T) {
	req := require.New(t)
	repo, dir := newTestMemberRepo(t)
	req.NoError(repo.Save(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "members.json"))
	req.NoError(err)
	req.Equal("[]", strings.TrimSpace(string(data)))
}

var _ IMemberRepository = (*MemberRepository)(nil)

func TestMemberRepository_PathPointsIntoDataDir(t *testing.T) {
	repo, dir := newTestMemberRepo(t)
	require.Equal(t, filepath.Join(dir, "members.json"), repo.Path())
}
