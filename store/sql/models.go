package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-responder/core"
	"github.com/uptrace/bun"
)

type actionRecord struct {
	bun.BaseModel `bun:"table:responder_actions,alias:ra"`

	ID         string    `bun:"id,pk"`
	ThreadID   string    `bun:"thread_id,notnull"`
	Kind       string    `bun:"kind,notnull"`
	Intent     string    `bun:"intent"`
	Status     string    `bun:"status,notnull"`
	Detail     string    `bun:"detail"`
	OccurredAt time.Time `bun:"occurred_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type contactLinkRecord struct {
	bun.BaseModel `bun:"table:responder_contact_links,alias:rcl"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email,notnull,unique"`
	ContactID string    `bun:"contact_id,notnull"`
	Intent    string    `bun:"intent"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *actionRecord) toDomain() core.ActionEntry {
	if r == nil {
		return core.ActionEntry{}
	}
	return core.ActionEntry{
		ThreadID:   strings.TrimSpace(r.ThreadID),
		Kind:       strings.TrimSpace(r.Kind),
		Intent:     strings.TrimSpace(r.Intent),
		Status:     strings.TrimSpace(r.Status),
		Detail:     r.Detail,
		OccurredAt: r.OccurredAt.UTC(),
	}
}
