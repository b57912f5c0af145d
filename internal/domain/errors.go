package domain

import "errors"

var (
	// ErrContent marks malformed lesson content.
	ErrContent = errors.New("invalid lesson content")

	ErrNotFound = errors.New("not found")

	// ErrIllegalState is returned when an operation does not fit the session state.
	ErrIllegalState = errors.New("operation not allowed in current session state")

	ErrDuplicateName = errors.New("name already registered")

	// ErrInsufficientContent is returned when a lesson cannot produce enough distinct choices.
	ErrInsufficientContent = errors.New("not enough distinct words in lesson")

	ErrInvalidName = errors.New("name cannot be empty")
)
