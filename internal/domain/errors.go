package domain

import "errors"

var (
	ErrBadPayload   = errors.New("malformed payload")
	ErrWSDisconnect = errors.New("websocket disconnected")
	ErrBusClosed    = errors.New("bus closed")
)
