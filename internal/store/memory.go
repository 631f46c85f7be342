package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

type memSession struct {
	Session
	reserved uint64
}

// memSessionRepo implements SessionRepository in process memory.
type memSessionRepo struct {
	mu         sync.Mutex
	sessions   map[string]*memSession
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newMemSessionRepo(ttl time.Duration, maxEntries int, now func() time.Time) *memSessionRepo {
	return &memSessionRepo{
		sessions:   make(map[string]*memSession),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

func (r *memSessionRepo) Create(ctx context.Context) (*Session, error) {
	defer observeStore(ctx, "sessions.create")()
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxEntries {
		r.evictOldest()
	}

	now := r.now()
	s := &memSession{Session: Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(r.ttl),
	}}
	r.sessions[s.ID] = s
	return s.snapshot(), nil
}

func (r *memSessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	defer observeStore(ctx, "sessions.get")()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (r *memSessionRepo) Reserve(ctx context.Context, id string) (uint64, error) {
	defer observeStore(ctx, "sessions.reserve")()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	s.reserved++
	return s.reserved, nil
}

func (r *memSessionRepo) Commit(ctx context.Context, id string, generation uint64, doc *vcard.Collection) error {
	defer observeStore(ctx, "sessions.commit")()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	if generation != s.reserved {
		return ErrStaleGeneration
	}
	s.Document = doc.Clone()
	s.Generation = generation
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, id string, fn func(doc *vcard.Collection) error) error {
	defer observeStore(ctx, "sessions.update")()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(id)
	if err != nil {
		return err
	}
	if s.Document == nil {
		return ErrNoDocument
	}
	return fn(s.Document)
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	defer observeStore(ctx, "sessions.delete")()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	defer observeStore(ctx, "sessions.purge")()
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memSessionRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions), nil
}

// lookup returns a live session and extends its expiry. Caller holds mu.
func (r *memSessionRepo) lookup(id string) (*memSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if !now.Before(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, ErrNotFound
	}
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(r.ttl)
	return s, nil
}

// evictOldest drops the least recently seen session. Caller holds mu.
func (r *memSessionRepo) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range r.sessions {
		if oldestID == "" || s.LastSeenAt.Before(oldest) {
			oldestID = id
			oldest = s.LastSeenAt
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}

func (s *memSession) snapshot() *Session {
	cp := s.Session
	cp.Document = s.Document.Clone()
	return &cp
}
