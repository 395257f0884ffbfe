package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrInvalidTransition indicates an illegal listing status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)
