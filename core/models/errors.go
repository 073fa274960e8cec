package models

import "errors"

var (
	// ErrValidation marks input rejected before any network call.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey marks a key matching several records in one backend.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrMissingID marks an update request whose match lacks the backend record ID.
	ErrMissingID = errors.New("no record id for backend")

	// ErrNoCredentials marks a run that has no usable credentials at all.
	ErrNoCredentials = errors.New("no credentials available")
)
