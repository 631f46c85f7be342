package vcard

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntities is returned by Load when the input holds no vCard blocks.
	ErrNoEntities = errors.New("no vcard entities found")
	// ErrUnknownVersion is returned for export targets other than 2.1, 3.0 and 4.0.
	ErrUnknownVersion = errors.New("unknown vcard version")
	// ErrMissingMandatoryField is returned when a 2.1 export has neither N nor FN.
	ErrMissingMandatoryField = errors.New("mandatory field missing")
	// ErrEntityIndex is returned when an edit targets an entity that does not exist.
	ErrEntityIndex = errors.New("entity index out of range")
	// ErrLineBreak is returned when an edited value would span several lines.
	ErrLineBreak = errors.New("value contains a line break")
)

// KeyError reports a property key rejected by the key grammar.
type KeyError struct {
	Index int    // entity index
	Line  int    // 1-based line within the entity block, 0 for edits
	Key   string
}

func (e *KeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("entity %d line %d: invalid key: %s", e.Index, e.Line, e.Key)
	}
	return fmt.Sprintf("entity %d: invalid key: %s", e.Index, e.Key)
}

// TransformError reports an entity that could not be prepared for export.
type TransformError struct {
	Index   int
	Version Version
	Err     error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("entity %d: prepare for %s: %v", e.Index, e.Version, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
