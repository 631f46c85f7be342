package store

import (
	"context"
	"time"

	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// SessionRepository holds editing sessions. Returned sessions are copies;
// changes go through Commit or Update.
type SessionRepository interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// Reserve hands out the generation token for a new load. Only the most
	// recently reserved generation can be committed.
	Reserve(ctx context.Context, id string) (uint64, error)
	Commit(ctx context.Context, id string, generation uint64, doc *vcard.Collection) error
	// Update runs fn against the live document under the repository lock.
	Update(ctx context.Context, id string, fn func(doc *vcard.Collection) error) error
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}
