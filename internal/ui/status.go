package ui

import (
	"errors"
	"net/http"

	"gitea.jw6.us/james/vcardedit/internal/editor"
	"gitea.jw6.us/james/vcardedit/internal/store"
	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// statusFor maps editor errors to HTTP status codes. Zero means the error is
// not a client error and must be handled as an internal failure.
func statusFor(err error) int {
	var keyErr *vcard.KeyError
	switch {
	case errors.Is(err, vcard.ErrNoEntities),
		errors.Is(err, vcard.ErrUnknownVersion),
		errors.Is(err, vcard.ErrLineBreak),
		errors.As(err, &keyErr):
		return http.StatusBadRequest
	case errors.Is(err, vcard.ErrEntityIndex),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrInvalidFields),
		errors.Is(err, store.ErrNoDocument),
		errors.Is(err, store.ErrStaleGeneration):
		return http.StatusConflict
	case errors.Is(err, vcard.ErrMissingMandatoryField):
		return http.StatusUnprocessableEntity
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return 0
}

// flashFor renders err for the flash banner.
func flashFor(err error) string {
	switch {
	case errors.Is(err, vcard.ErrNoEntities):
		return "no contacts found in file"
	case errors.Is(err, store.ErrStaleGeneration):
		return "a newer upload replaced this one"
	case errors.Is(err, editor.ErrInvalidFields):
		return "fix the highlighted fields before downloading"
	case errors.Is(err, store.ErrNoDocument):
		return "load a vCard file first"
	}
	return err.Error()
}
