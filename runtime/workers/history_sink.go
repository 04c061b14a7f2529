package workers

import (
	"context"
	"log/slog"

	"mentionbot/repositories"
)

// HistorySinkWorker drains mention records off the hot message path and
// persists them. A failed write is logged and skipped; the message flow
// never waits on history.
type HistorySinkWorker struct {
	events <-chan repositories.MentionRecord
	repo   repositories.IHistoryRepository
	log    *slog.Logger
}

func NewHistorySinkWorker(
	events <-chan repositories.MentionRecord,
	repo repositories.IHistoryRepository,
	log *slog.Logger,
) *HistorySinkWorker {
	return &HistorySinkWorker{events: events, repo: repo, log: log}
}

func (w HistorySinkWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case rec, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.repo.Store(ctx, rec); err != nil {
				w.log.Error("Failed to persist mention record", "group", rec.GroupID, "err", err)
			}
		}
	}
}
