package game

import "errors"

var (
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidMove  = errors.New("invalid move")
	ErrUnknownGame  = errors.New("unknown game")
)
