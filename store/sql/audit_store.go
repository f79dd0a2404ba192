package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-responder/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultActionListLimit = 50

// ActionAuditStore persists one row per dispatched (or declined) write-back.
// The trail is advisory: insert failures are surfaced to the caller, which
// logs and continues, and nothing in the reply path reads it back.
type ActionAuditStore struct {
	db   *bun.DB
	repo repository.Repository[*actionRecord]
}

func NewActionAuditStore(db *bun.DB) (*ActionAuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*actionRecord](db, actionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid action repository wiring: %w", err)
		}
	}
	return &ActionAuditStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *ActionAuditStore) RecordAction(ctx context.Context, entry core.ActionEntry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: action audit store is not configured")
	}
	threadID := strings.TrimSpace(entry.ThreadID)
	kind := strings.TrimSpace(entry.Kind)
	if threadID == "" || kind == "" {
		return fmt.Errorf("sqlstore: thread id and action kind are required")
	}
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	record := &actionRecord{
		ID:         uuid.NewString(),
		ThreadID:   threadID,
		Kind:       kind,
		Intent:     strings.TrimSpace(entry.Intent),
		Status:     strings.TrimSpace(entry.Status),
		Detail:     entry.Detail,
		OccurredAt: occurredAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: record action: %w", err)
	}
	return nil
}

// ListRecentActions returns the newest entries first. An empty threadID
// lists across all threads.
func (s *ActionAuditStore) ListRecentActions(
	ctx context.Context,
	threadID string,
	limit int,
) ([]core.ActionEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: action audit store is not configured")
	}
	if limit <= 0 {
		limit = defaultActionListLimit
	}
	records := []*actionRecord{}
	query := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.occurred_at DESC").
		Limit(limit)
	if trimmed := strings.TrimSpace(threadID); trimmed != "" {
		query = query.Where("?TableAlias.thread_id = ?", trimmed)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("sqlstore: list actions: %w", err)
	}
	entries := make([]core.ActionEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.toDomain())
	}
	return entries, nil
}
