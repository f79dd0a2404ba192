package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-responder/core"
)

// ActionReader lists the audit trail of dispatched actions, newest first.
type ActionReader interface {
	ListRecentActions(ctx context.Context, threadID string, limit int) ([]core.ActionEntry, error)
}

// ContactReader resolves a CRM contact identifier by email.
type ContactReader interface {
	ResolveContactID(ctx context.Context, email string) (string, error)
}

type ListActionsQuery struct {
	reader ActionReader
}

func NewListActionsQuery(reader ActionReader) *ListActionsQuery {
	return &ListActionsQuery{reader: reader}
}

func (q *ListActionsQuery) Query(ctx context.Context, msg ListActionsMessage) ([]core.ActionEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: action reader is required")
	}
	limit := msg.Limit
	if limit <= 0 {
		limit = 50
	}
	return q.reader.ListRecentActions(ctx, strings.TrimSpace(msg.ThreadID), limit)
}

// GuardReader exposes the loop guard snapshot; *core.LoopGuard satisfies it.
type GuardReader interface {
	Status(ctx context.Context) (core.GuardStatus, error)
}

type GuardStatusQuery struct {
	reader GuardReader
}

func NewGuardStatusQuery(reader GuardReader) *GuardStatusQuery {
	return &GuardStatusQuery{reader: reader}
}

func (q *GuardStatusQuery) Query(ctx context.Context, _ GuardStatusMessage) (core.GuardStatus, error) {
	if q == nil || q.reader == nil {
		return core.GuardStatus{}, queryDependencyError("query: guard reader is required")
	}
	return q.reader.Status(ctx)
}

type LookupContactQuery struct {
	reader ContactReader
}

func NewLookupContactQuery(reader ContactReader) *LookupContactQuery {
	return &LookupContactQuery{reader: reader}
}

func (q *LookupContactQuery) Query(ctx context.Context, msg LookupContactMessage) (string, error) {
	if q == nil || q.reader == nil {
		return "", queryDependencyError("query: contact reader is required")
	}
	email := strings.TrimSpace(msg.Email)
	if email == "" {
		return "", queryValidationError("email", "contact email is required")
	}
	return q.reader.ResolveContactID(ctx, email)
}
