package store

import "errors"

var (
	// ErrNotFound indicates a missing or expired session.
	ErrNotFound = errors.New("session not found")
	// ErrStaleGeneration indicates a load was superseded by a newer one.
	ErrStaleGeneration = errors.New("stale document generation")
	// ErrNoDocument indicates the session has no document loaded yet.
	ErrNoDocument = errors.New("no document loaded")
)
