package hw

import "github.com/go-faster/errors"

var (
	ErrBouncing    = errors.New("input still bouncing")
	ErrUnknownPort = errors.New("unknown port")
	ErrTimeout     = errors.New("timeout")
)
