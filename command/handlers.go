package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-responder/core"
)

// EventService is the event-handling surface commands delegate to.
type EventService interface {
	HandleEvents(ctx context.Context, events []core.Event) core.DeliveryStats
}

// MaintenanceService runs guard housekeeping.
type MaintenanceService interface {
	RunPurge(ctx context.Context) (int, error)
}

type HandleEventsCommand struct {
	service EventService
}

func NewHandleEventsCommand(service EventService) *HandleEventsCommand {
	return &HandleEventsCommand{service: service}
}

func (c *HandleEventsCommand) Execute(ctx context.Context, msg HandleEventsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: event service is required")
	}
	stats := c.service.HandleEvents(ctx, msg.Events)
	storeResult(ctx, stats)
	return nil
}

type PostCommentCommand struct {
	dispatcher core.ActionDispatcher
}

func NewPostCommentCommand(dispatcher core.ActionDispatcher) *PostCommentCommand {
	return &PostCommentCommand{dispatcher: dispatcher}
}

func (c *PostCommentCommand) Execute(ctx context.Context, msg PostCommentMessage) error {
	if c == nil || c.dispatcher == nil {
		return commandDependencyError("command: action dispatcher is required")
	}
	if strings.TrimSpace(msg.ThreadID) == "" {
		return commandValidationError("thread_id", "thread id is required")
	}
	outcome := c.dispatcher.PostComment(ctx, msg.ThreadID, msg.Text)
	storeResult(ctx, outcome)
	return outcome.Err
}

type SendReplyCommand struct {
	dispatcher core.ActionDispatcher
}

func NewSendReplyCommand(dispatcher core.ActionDispatcher) *SendReplyCommand {
	return &SendReplyCommand{dispatcher: dispatcher}
}

func (c *SendReplyCommand) Execute(ctx context.Context, msg SendReplyMessage) error {
	if c == nil || c.dispatcher == nil {
		return commandDependencyError("command: action dispatcher is required")
	}
	if strings.TrimSpace(msg.ThreadID) == "" {
		return commandValidationError("thread_id", "thread id is required")
	}
	outcome := c.dispatcher.SendReply(ctx, msg.ThreadID, msg.Decision, msg.Inspection)
	storeResult(ctx, outcome)
	return outcome.Err
}

type TagContactCommand struct {
	dispatcher core.ActionDispatcher
}

func NewTagContactCommand(dispatcher core.ActionDispatcher) *TagContactCommand {
	return &TagContactCommand{dispatcher: dispatcher}
}

func (c *TagContactCommand) Execute(ctx context.Context, msg TagContactMessage) error {
	if c == nil || c.dispatcher == nil {
		return commandDependencyError("command: action dispatcher is required")
	}
	if strings.TrimSpace(msg.Email) == "" {
		return commandValidationError("email", "contact email is required")
	}
	outcome := c.dispatcher.TagContact(ctx, msg.Email, msg.Intent)
	storeResult(ctx, outcome)
	return outcome.Err
}

type PurgeGuardCommand struct {
	service MaintenanceService
}

func NewPurgeGuardCommand(service MaintenanceService) *PurgeGuardCommand {
	return &PurgeGuardCommand{service: service}
}

func (c *PurgeGuardCommand) Execute(ctx context.Context, _ PurgeGuardMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: maintenance service is required")
	}
	pruned, err := c.service.RunPurge(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, pruned)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
