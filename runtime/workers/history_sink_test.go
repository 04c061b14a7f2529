package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"mentionbot/repositories"
)

type recordingHistoryRepo struct {
	mu      sync.Mutex
	stored  []repositories.MentionRecord
	written chan struct{}
}

func (r *recordingHistoryRepo) Store(ctx context.Context, record repositories.MentionRecord) error {
	r.mu.Lock()
	r.stored = append(r.stored, record)
	r.mu.Unlock()
	r.written <- struct{}{}
	return nil
}

func (r *recordingHistoryRepo) Recent(groupID string, limit int) ([]repositories.MentionRecord, error) {
	return nil, nil
}

func (r *recordingHistoryRepo) Search(ctx context.Context, groupID, terms string, limit int) ([]repositories.MentionRecord, error) {
	return nil, nil
}

func TestHistorySinkWorker_PersistsRecords(t *testing.T) {
	req := require.New(t)
	repo := &recordingHistoryRepo{written: make(chan struct{}, 2)}
	events := make(chan repositories.MentionRecord, 2)
	worker := NewHistorySinkWorker(events, repo, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	events <- repositories.MentionRecord{ID: uuid.New(), GroupID: "g1", Text: "one", At: time.Now()}
	events <- repositories.MentionRecord{ID: uuid.New(), GroupID: "g1", Text: "two", At: time.Now()}

	for i := 0; i < 2; i++ {
		select {
		case <-repo.written:
		case <-time.After(500 * time.Millisecond):
			req.Fail("record was not persisted in time")
		}
	}

	repo.mu.Lock()
	texts := []string{repo.stored[0].Text, repo.stored[1].Text}
	repo.mu.Unlock()
	req.Equal([]string{"one", "two"}, texts)

	cancel()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("worker did not stop on cancellation")
	}
}

func TestHistorySinkWorker_StopsOnClosedChannel(t *testing.T) {
	req := require.New(t)
	repo := &recordingHistoryRepo{written: make(chan struct{}, 1)}
	events := make(chan repositories.MentionRecord)
	worker := NewHistorySinkWorker(events, repo, slog.Default())

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	close(events)
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("worker did not stop on channel close")
	}
}
