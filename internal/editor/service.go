// Package editor runs the editing operations of a session: load a document,
// edit property values, validate and export.
package editor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gitea.jw6.us/james/vcardedit/internal/metrics"
	"gitea.jw6.us/james/vcardedit/internal/store"
	"gitea.jw6.us/james/vcardedit/internal/vcard"
)

// ErrInvalidFields is returned by Export while any field fails validation.
var ErrInvalidFields = errors.New("document has invalid fields")

// Service operates on the documents held in the session store.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

func NewService(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log}
}

// EnsureSession returns id when it names a live session, otherwise a new
// session is created. created reports whether a new session was made.
func (s *Service) EnsureSession(ctx context.Context, id string) (sessionID string, created bool, err error) {
	if id != "" {
		if _, err := s.store.Sessions.Get(ctx, id); err == nil {
			return id, false, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return "", false, err
		}
	}
	sess, err := s.store.Sessions.Create(ctx)
	if err != nil {
		return "", false, fmt.Errorf("create session: %w", err)
	}
	s.log.Debug("Editing session created", zap.String("session", sess.ID))
	return sess.ID, true, nil
}

// SessionExists reports whether id names a live session. The lookup extends
// the session's expiry.
func (s *Service) SessionExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := s.store.Sessions.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LoadResult describes a committed load.
type LoadResult struct {
	Generation uint64
	Entities   int
	Rejected   []error
}

// Load parses raw and replaces the session's document with the result. A
// failed load leaves the previous document in place. Loads are ordered by the
// generation reserved before parsing: if a newer load was reserved while this
// one was parsing, this one is discarded with store.ErrStaleGeneration.
func (s *Service) Load(ctx context.Context, sessionID, raw string) (*LoadResult, error) {
	generation, err := s.store.Sessions.Reserve(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reserve load: %w", err)
	}

	doc, err := vcard.Load(raw)
	if err != nil {
		metrics.RecordLoad("empty", 0, 0)
		return nil, err
	}
	rejected := multierr.Errors(doc.Rejected())

	if err := s.store.Sessions.Commit(ctx, sessionID, generation, doc); err != nil {
		if errors.Is(err, store.ErrStaleGeneration) {
			metrics.RecordLoad("stale", 0, 0)
			s.log.Info("Discarded superseded load", zap.String("session", sessionID), zap.Uint64("generation", generation))
		}
		return nil, fmt.Errorf("commit load: %w", err)
	}

	metrics.RecordLoad("ok", doc.Len(), len(rejected))
	if len(rejected) > 0 {
		s.log.Info("Rejected property keys", zap.String("session", sessionID), zap.Errors("keys", rejected))
	}
	s.log.Debug("Document loaded", zap.String("session", sessionID), zap.Int("entities", doc.Len()), zap.Uint64("generation", generation))

	return &LoadResult{Generation: generation, Entities: doc.Len(), Rejected: rejected}, nil
}

// Snapshot returns a view of the session's document with validation results.
// An empty sessionID yields an empty snapshot.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	if sessionID == "" {
		return newSnapshot(&store.Session{}), nil
	}
	sess, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newSnapshot(sess), nil
}

// SetProperty edits one property value and reports whether the new value
// passes validation. Invalid values are stored all the same.
func (s *Service) SetProperty(ctx context.Context, sessionID string, index int, key, value string) (bool, error) {
	if sessionID == "" {
		return false, store.ErrNoDocument
	}
	err := s.store.Sessions.Update(ctx, sessionID, func(doc *vcard.Collection) error {
		return doc.SetProperty(index, key, value)
	})
	if err != nil {
		return false, err
	}
	return vcard.Validate(key, value), nil
}

// Validate returns the per-field validation results of every entity.
func (s *Service) Validate(ctx context.Context, sessionID string) ([]map[string]bool, error) {
	if sessionID == "" {
		return nil, store.ErrNoDocument
	}
	sess, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Document == nil {
		return nil, store.ErrNoDocument
	}
	results := make([]map[string]bool, 0, sess.Document.Len())
	for _, e := range sess.Document.Entities {
		results = append(results, vcard.ValidateEntity(e))
	}
	return results, nil
}

// Export is a rendered document ready for download.
type Export struct {
	Filename    string
	ContentType string
	Body        string
}

// Export renders the session's document for the version token v.
func (s *Service) Export(ctx context.Context, sessionID, v string) (*Export, error) {
	version, err := vcard.ParseVersion(v)
	if err != nil {
		metrics.RecordExport("unknown", "unknown_version")
		return nil, err
	}
	if sessionID == "" {
		return nil, store.ErrNoDocument
	}

	sess, err := s.store.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Document == nil {
		return nil, store.ErrNoDocument
	}
	if !sess.Document.Valid() {
		metrics.RecordExport(version.String(), "invalid_fields")
		return nil, ErrInvalidFields
	}

	body, err := vcard.ExportAll(sess.Document, version)
	if err != nil {
		metrics.RecordExport(version.String(), "transform_failed")
		s.log.Info("Export failed", zap.String("session", sessionID), zap.Error(err))
		return nil, err
	}

	metrics.RecordExport(version.String(), "ok")
	return &Export{
		Filename:    vcard.Filename(version),
		ContentType: vcard.ContentType,
		Body:        body,
	}, nil
}

// EndSession discards the session and its document. An empty sessionID is a
// no-op.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Sessions.Delete(ctx, sessionID)
}
