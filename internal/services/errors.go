package services

import "errors"

var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotChatMember  = errors.New("user is not a member of this chat")
	ErrInvalidChat    = errors.New("a chat needs two distinct users")
	ErrInvalidMessage = errors.New("invalid message")
	ErrStorage        = errors.New("media storage failed")
)
