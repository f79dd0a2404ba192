package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[HandleEventsMessage] = (*HandleEventsCommand)(nil)
	_ gocmd.Commander[PostCommentMessage]  = (*PostCommentCommand)(nil)
	_ gocmd.Commander[SendReplyMessage]    = (*SendReplyCommand)(nil)
	_ gocmd.Commander[TagContactMessage]   = (*TagContactCommand)(nil)
	_ gocmd.Commander[PurgeGuardMessage]   = (*PurgeGuardCommand)(nil)
)
