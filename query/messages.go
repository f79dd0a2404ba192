package query

import (
	"fmt"
	"strings"
)

const (
	TypeListActions   = "responder.query.actions.list"
	TypeLookupContact = "responder.query.contact.lookup"
	TypeGuardStatus   = "responder.query.guard.status"
)

type ListActionsMessage struct {
	ThreadID string
	Limit    int
}

func (ListActionsMessage) Type() string { return TypeListActions }

func (m ListActionsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

// GuardStatusMessage has no parameters; the guard snapshot is global.
type GuardStatusMessage struct{}

func (GuardStatusMessage) Type() string { return TypeGuardStatus }

func (GuardStatusMessage) Validate() error { return nil }

type LookupContactMessage struct {
	Email string
}

func (LookupContactMessage) Type() string { return TypeLookupContact }

func (m LookupContactMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("query: contact email is required")
	}
	return nil
}
