package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-responder/core"
)

const (
	TypeHandleEvents = "responder.command.events.handle"
	TypePostComment  = "responder.command.comment.post"
	TypeSendReply    = "responder.command.reply.send"
	TypeTagContact   = "responder.command.contact.tag"
	TypePurgeGuard   = "responder.command.guard.purge"
)

type HandleEventsMessage struct {
	Events []core.Event
}

func (HandleEventsMessage) Type() string { return TypeHandleEvents }

func (m HandleEventsMessage) Validate() error {
	if len(m.Events) == 0 {
		return fmt.Errorf("command: at least one event is required")
	}
	return nil
}

type PostCommentMessage struct {
	ThreadID string
	Text     string
}

func (PostCommentMessage) Type() string { return TypePostComment }

func (m PostCommentMessage) Validate() error {
	if strings.TrimSpace(m.ThreadID) == "" {
		return fmt.Errorf("command: thread id is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("command: comment text is required")
	}
	return nil
}

type SendReplyMessage struct {
	ThreadID   string
	Decision   core.ReplyDecision
	Inspection core.ThreadInspection
}

func (SendReplyMessage) Type() string { return TypeSendReply }

func (m SendReplyMessage) Validate() error {
	if strings.TrimSpace(m.ThreadID) == "" {
		return fmt.Errorf("command: thread id is required")
	}
	if strings.TrimSpace(m.Decision.Intent) == "" {
		return fmt.Errorf("command: reply intent is required")
	}
	return nil
}

type TagContactMessage struct {
	Email  string
	Intent string
}

func (TagContactMessage) Type() string { return TypeTagContact }

func (m TagContactMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: contact email is required")
	}
	if strings.TrimSpace(m.Intent) == "" {
		return fmt.Errorf("command: intent is required")
	}
	return nil
}

type PurgeGuardMessage struct{}

func (PurgeGuardMessage) Type() string { return TypePurgeGuard }

func (PurgeGuardMessage) Validate() error { return nil }
