package store

import (
	"time"

	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// Session is one editing session and the document currently loaded into it.
type Session struct {
	ID string
	// Document is nil until the first successful load.
	Document   *vcard.Collection
	Generation uint64
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}
