package inventory

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("already exists")
	ErrPortOutOfRange    = errors.New("switch port out of range")
	ErrNoConnection      = errors.New("wall port has no connection")
	ErrMalformedDocument = errors.New("malformed document")
)
