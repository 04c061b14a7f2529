//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// MentionRecord is one rewritten message: who was mentioned, in which group,
// and the text that triggered it.
type MentionRecord struct {
	ID      uuid.UUID `json:"id"`
	GroupID string    `json:"group_id"`
	SIDs    []string  `json:"sids"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type IHistoryRepository interface {
	Store(ctx context.Context, record MentionRecord) error
	Recent(groupID string, limit int) ([]MentionRecord, error)
	Search(ctx context.Context, groupID, terms string, limit int) ([]MentionRecord, error)
}

type HistoryRepository struct {
	db     *badger.DB
	writer *bluge.Writer
	log    *slog.Logger
	limit  *int
}

func NewHistoryRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger, limit *int) *HistoryRepository {
	return &HistoryRepository{db: db, writer: writer, log: log, limit: limit}
}

// key layout "mention:{group_id}:{timestamp_padded}:{uuid}":
//  1. 19-digit zero padding keeps keys chronologically sorted
//     (lexicographical order).
//  2. The UUID disambiguates two rewrites landing on the same nanosecond.
func mentionKey(record MentionRecord) string {
	return fmt.Sprintf("mention:%s:%019d:%s",
		record.GroupID,
		record.At.UnixNano(),
		record.ID,
	)
}

// Store persists the record in BadgerDB and indexes its text in Bluge so
// find_mention can search it later.
func (h HistoryRepository) Store(ctx context.Context, record MentionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := mentionKey(record)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(key).
		AddField(bluge.NewTextField("text", record.Text)).
		AddField(bluge.NewKeywordField("group_id", record.GroupID)).
		AddField(bluge.NewDateTimeField("at", record.At))
	return h.writer.Update(doc.ID(), doc)
}

// Recent retrieves the newest records of a group using a reverse prefix
// scan. Thanks to the padded timestamp in the key they come out sorted,
// newest first. Collection stops at the configured limit.
func (h HistoryRepository) Recent(groupID string, limit int) ([]MentionRecord, error) {
	if h.limit != nil && (limit <= 0 || limit > *h.limit) {
		limit = *h.limit
	}
	var out []MentionRecord
	err := h.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("mention:%s:", groupID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) == limit {
				h.log.Debug(fmt.Sprintf("Maximum of %d mention records reached", limit))
				break
			}
			err := it.Item().Value(func(v []byte) error {
				var rec MentionRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// Search runs a full-text match over the recorded texts, scoped to one
// group, and resolves the hits back through BadgerDB.
func (h HistoryRepository) Search(ctx context.Context, groupID, terms string, limit int) ([]MentionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if h.limit != nil && limit > *h.limit {
		limit = *h.limit
	}

	reader, err := h.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(bluge.NewTermQuery(groupID).SetField("group_id"))

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var keys []string
	next, err := dmi.Next()
	for err == nil && next != nil {
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		next, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}

	var out []MentionRecord
	err = h.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				h.log.Warn("Indexed mention missing from store", "key", key)
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(v []byte) error {
				var rec MentionRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}
