package app

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNotAMember    = errors.New("not a member of the room")
	ErrInvalidTarget = errors.New("target is not a member of the room")
)
