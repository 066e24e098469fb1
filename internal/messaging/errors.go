package messaging

import "errors"

var (
	ErrChatNotFound   = errors.New("Chat not found")
	ErrChatBlocked    = errors.New("This conversation has been blocked")
	ErrNotParticipant = errors.New("You are not part of this conversation")
	ErrEmptyMessage   = errors.New("Message needs text or an image")
	ErrSelfChat       = errors.New("Cannot message yourself")
	ErrInvalidReport  = errors.New("A report needs a reason and a target")
)
