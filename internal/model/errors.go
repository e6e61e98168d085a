package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrForbidden is returned when the caller lacks the role or assignment
	// required for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable is returned when the underlying store is unreachable,
	// the caller may retry.
	ErrUnavailable = errors.New("unavailable")
)
