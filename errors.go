package olist

import "errors"

var (
	ErrInvalidArgument = errors.New("olist: invalid argument")
	ErrIndexOutOfRange = errors.New("olist: index out of range")

	// Reported by AllContext alongside the context error.
	ErrCanceled = errors.New("olist: enumeration canceled")

	// Panicked with, wrapped, when a released List is used.
	ErrReleased = errors.New("olist: list released")
)
