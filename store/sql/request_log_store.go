package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-localpay/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultListLimit = 100

// RequestLogStore persists request log entries so they survive the session
// that produced them. It is a core.RequestLogSink and core.RequestLogReader.
type RequestLogStore struct {
	db   *bun.DB
	repo repository.Repository[*requestLogRecord]
}

func NewRequestLogStore(db *bun.DB) (*RequestLogStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*requestLogRecord](db, requestLogHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid request log repository wiring: %w", err)
		}
	}
	return &RequestLogStore{db: db, repo: repo}, nil
}

func (s *RequestLogStore) Record(ctx context.Context, entry core.RequestLogEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: request log store is not configured")
	}
	logID := strings.TrimSpace(entry.ID)
	if logID == "" {
		return fmt.Errorf("sqlstore: request log entry id is required")
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := entry.Query
	if query == nil {
		query = map[string]string{}
	}

	_, err := s.repo.Create(ctx, &requestLogRecord{
		ID:           uuid.NewString(),
		LogID:        logID,
		Method:       strings.ToUpper(strings.TrimSpace(entry.Method)),
		Path:         entry.Path,
		Query:        query,
		RequestBody:  string(entry.RequestBody),
		ResponseBody: string(entry.ResponseBody),
		StatusCode:   entry.StatusCode,
		DurationMS:   entry.DurationMS,
		Error:        entry.Error,
		ObjectType:   entry.ObjectType,
		ObjectID:     entry.ObjectID,
		CreatedAt:    createdAt,
	})
	return err
}

// List returns matching entries newest first. A zero limit is capped so an
// unbounded table never loads in one call.
func (s *RequestLogStore) List(ctx context.Context, filter core.RequestLogFilter) ([]core.RequestLogEntry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: request log store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(limit, 0),
	}
	if objectType := strings.TrimSpace(filter.ObjectType); objectType != "" {
		selectors = append(selectors, repository.SelectBy("object_type", "=", objectType))
	}
	if objectID := strings.TrimSpace(filter.ObjectID); objectID != "" {
		selectors = append(selectors, repository.SelectBy("object_id", "=", objectID))
	}

	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	out := make([]core.RequestLogEntry, 0, len(records))
	for _, record := range records {
		out = append(out, requestLogRecordToDomain(record))
	}
	return out, nil
}

// Clear deletes every stored entry.
func (s *RequestLogStore) Clear(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: request log store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*requestLogRecord)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// Prune deletes entries older than ttl.
func (s *RequestLogStore) Prune(ctx context.Context, ttl time.Duration) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: request log store is not configured")
	}
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := s.db.NewDelete().
		Model((*requestLogRecord)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func requestLogRecordToDomain(record *requestLogRecord) core.RequestLogEntry {
	if record == nil {
		return core.RequestLogEntry{}
	}
	return core.RequestLogEntry{
		ID:           record.LogID,
		Method:       record.Method,
		Path:         record.Path,
		Query:        record.Query,
		RequestBody:  []byte(record.RequestBody),
		ResponseBody: []byte(record.ResponseBody),
		StatusCode:   record.StatusCode,
		DurationMS:   record.DurationMS,
		Error:        record.Error,
		ObjectType:   record.ObjectType,
		ObjectID:     record.ObjectID,
		CreatedAt:    record.CreatedAt.UTC(),
	}
}

var (
	_ core.RequestLogSink   = (*RequestLogStore)(nil)
	_ core.RequestLogReader = (*RequestLogStore)(nil)
)
