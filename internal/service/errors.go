package service

import "errors"

// Domain-rule violations recovered into structured error responses by the
// HTTP controllers and the socket gateway.
var (
	ErrUserNotFound    = errors.New("user doesn't exist")
	ErrUserOffline     = errors.New("user isn't online")
	ErrAlreadyInCall   = errors.New("user is on another call")
	ErrNotInCall       = errors.New("you are not on a call")
	ErrIsCaller        = errors.New("you are caller")
	ErrChannelNotFound = errors.New("channel doesn't exist or you don't have permission")
	ErrMessageNotFound = errors.New("message doesn't exist or you don't have permission")
	ErrGroupNotFound   = errors.New("group doesn't exist or you don't have permission")
	ErrNotGroupMember  = errors.New("user isn't group member")
	ErrForbidden       = errors.New("you don't have permission")

	ErrFriendRequestExists   = errors.New("friendship request already exists")
	ErrFriendRequestNotFound = errors.New("friendship request doesn't exist")
	ErrFriendshipNotFound    = errors.New("friendship doesn't exist")
	ErrCannotBefriendSelf    = errors.New("cannot send a friendship request to yourself")

	ErrTooManyGroups = errors.New("you can only own a maximum of 10 groups")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
