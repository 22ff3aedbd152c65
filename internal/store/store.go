// Package store holds the portfolio document. PortfolioStore is the single
// source of truth for portfolio content: it loads the document from a
// kv.Backend, serves defensive copies to readers, writes every mutation back
// whole, and notifies subscribers with the updated document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/kv"
	"folio/internal/models"
)

// CurrentVersion is the schema version tag written next to the document.
// A stored document with any other tag is discarded on load.
const CurrentVersion = "2.0.0"

var (
	// ErrInvalid wraps validation failures. The store is left unchanged.
	ErrInvalid = errors.New("invalid portfolio data")

	// ErrPersist wraps backend write failures. The in-memory document is
	// rolled back to its state before the mutation.
	ErrPersist = errors.New("portfolio persist failed")
)

// Option configures a PortfolioStore.
type Option func(*PortfolioStore)

// WithClock overrides the time source used for project creation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *PortfolioStore) { s.now = now }
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *PortfolioStore) { s.newID = gen }
}

type subscriber struct {
	id int
	fn func(models.Document)
}

// PortfolioStore manages the portfolio document.
type PortfolioStore struct {
	backend kv.Backend
	now     func() time.Time
	newID   func() string

	mu  sync.RWMutex
	doc models.Document

	// versioned is set once storage is known to carry CurrentVersion. After
	// that only the document key is written.
	versioned bool

	// deliverMu keeps broadcasts in mutation order.
	deliverMu sync.Mutex

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

// Open loads the document from backend. A missing, version-mismatched or
// corrupt document is replaced with DefaultDocument and written back. Only a
// backend read failure is returned as an error.
func Open(ctx context.Context, backend kv.Backend, opts ...Option) (*PortfolioStore, error) {
	s := &PortfolioStore{
		backend: backend,
		now:     time.Now,
		newID:   newID,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, ok, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		doc = DefaultDocument()
		if err := s.persist(ctx, doc); err != nil {
			slog.Warn("failed to persist default portfolio", "error", err)
		}
		slog.Info("portfolio seeded with defaults", "version", CurrentVersion)
	}

	s.doc = doc
	if ok {
		s.versioned = true
	}
	return s, nil
}

// load reads and decodes the stored document. ok is false when the stored
// data must be replaced with defaults.
func (s *PortfolioStore) load(ctx context.Context) (models.Document, bool, error) {
	version, ok, err := s.backend.Get(ctx, kv.KeyPortfolioVersion)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("load portfolio version: %w", err)
	}
	if !ok {
		return models.Document{}, false, nil
	}
	if version != CurrentVersion {
		slog.Warn("portfolio schema version changed, discarding stored data",
			"stored", version,
			"current", CurrentVersion,
		)
		return models.Document{}, false, nil
	}

	raw, ok, err := s.backend.Get(ctx, kv.KeyPortfolioData)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("load portfolio data: %w", err)
	}
	if !ok {
		return models.Document{}, false, nil
	}

	var doc models.Document
	if err := decodeObject([]byte(raw), &doc); err != nil {
		slog.Warn("stored portfolio is corrupt, reseeding", "error", err)
		return models.Document{}, false, nil
	}
	doc.Normalize()
	return doc, true, nil
}

// persist writes the document, then the version tag if storage does not
// carry it yet. A document without a current tag is discarded on load, so a
// failed tag write leaves storage reading back as the defaults, which is
// what memory holds until the first successful persist.
func (s *PortfolioStore) persist(ctx context.Context, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPersist, err)
	}
	if err := s.backend.Set(ctx, kv.KeyPortfolioData, string(raw)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if s.versioned {
		return nil
	}
	if err := s.backend.Set(ctx, kv.KeyPortfolioVersion, CurrentVersion); err != nil {
		return fmt.Errorf("%w: version: %w", ErrPersist, err)
	}
	s.versioned = true
	return nil
}

// mutate applies fn to a working copy of the document. When fn reports a
// change, the copy is persisted, installed and broadcast. When fn reports no
// change or fails, nothing happens.
func (s *PortfolioStore) mutate(ctx context.Context, op string, fn func(doc *models.Document) (bool, error)) (bool, error) {
	s.mu.Lock()

	next := s.doc.Clone()
	changed, err := fn(&next)
	if err != nil || !changed {
		s.mu.Unlock()
		return false, err
	}
	next.Normalize()

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		slog.Error("portfolio write failed", "op", op, "error", err)
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.doc = next
	snapshot := next.Clone()

	// Take the delivery lock before releasing the document lock so that
	// concurrent mutations broadcast in the order they were applied.
	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	s.broadcast(op, snapshot)
	return true, nil
}

// Subscribe registers fn to receive the full document after every
// successful mutation. Calls are synchronous and ordered. fn must not call
// mutating store methods. The returned function removes the subscription.
func (s *PortfolioStore) Subscribe(fn func(models.Document)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *PortfolioStore) broadcast(op string, doc models.Document) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		deliver(op, sub.fn, doc.Clone())
	}
}

// deliver calls one subscriber, containing any panic it raises.
func deliver(op string, fn func(models.Document), doc models.Document) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("portfolio subscriber panicked", "op", op, "error", rec)
		}
	}()
	fn(doc)
}

// Document returns a deep copy of the whole document.
func (s *PortfolioStore) Document() models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Export serialises the document as indented JSON.
func (s *PortfolioStore) Export() (string, error) {
	raw, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("export portfolio: %w", err)
	}
	return string(raw), nil
}

// Import replaces the document with text merged over a fresh default
// document. Unknown fields are dropped and missing ones take default values.
// Text that is not a JSON object is rejected with (false, nil) and the store
// is left unchanged. Records are validated as Add would validate them; a
// failure returns an ErrInvalid error and the store is left unchanged.
// Records without an id, or repeating an earlier id, receive a fresh one.
func (s *PortfolioStore) Import(ctx context.Context, text string) (bool, error) {
	doc := DefaultDocument()
	if err := decodeObject([]byte(text), &doc); err != nil {
		slog.Warn("portfolio import rejected", "error", err)
		return false, nil
	}
	doc.Normalize()
	if err := validateDocument(doc); err != nil {
		slog.Warn("portfolio import rejected", "error", err)
		return false, invalid(err)
	}
	s.assignIDs(&doc)

	_, err := s.mutate(ctx, "import portfolio", func(d *models.Document) (bool, error) {
		*d = doc
		return true, nil
	})
	if err != nil {
		return false, err
	}
	slog.Info("portfolio imported")
	return true, nil
}

// Reset replaces the document with DefaultDocument.
func (s *PortfolioStore) Reset(ctx context.Context) error {
	_, err := s.mutate(ctx, "reset portfolio", func(d *models.Document) (bool, error) {
		*d = DefaultDocument()
		return true, nil
	})
	if err != nil {
		return err
	}
	slog.Info("portfolio reset to defaults")
	return nil
}

// assignIDs gives every record without an id, or with an id already used
// earlier in its collection, a fresh one.
func (s *PortfolioStore) assignIDs(doc *models.Document) {
	uniqueIDs(s.newID, doc.Skills, func(v *models.Skill) *string { return &v.ID })
	uniqueIDs(s.newID, doc.Projects, func(v *models.Project) *string { return &v.ID })
	uniqueIDs(s.newID, doc.Certifications, func(v *models.Certification) *string { return &v.ID })
	uniqueIDs(s.newID, doc.Education, func(v *models.Education) *string { return &v.ID })
	uniqueIDs(s.newID, doc.Experience, func(v *models.Experience) *string { return &v.ID })
}

func uniqueIDs[T any](newID func() string, items []T, id func(*T) *string) {
	seen := make(map[string]bool, len(items))
	for i := range items {
		p := id(&items[i])
		for *p == "" || seen[*p] {
			*p = newID()
		}
		seen[*p] = true
	}
}

// validateDocument checks the singletons and every record.
func validateDocument(doc models.Document) error {
	if err := doc.PersonalInfo.Validate(); err != nil {
		return fmt.Errorf("personalInfo: %w", err)
	}
	if err := doc.SocialLinks.Validate(); err != nil {
		return fmt.Errorf("socialLinks: %w", err)
	}
	if err := doc.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return errors.Join(
		validateAll("skills", doc.Skills),
		validateAll("projects", doc.Projects),
		validateAll("certifications", doc.Certifications),
		validateAll("education", doc.Education),
		validateAll("experience", doc.Experience),
	)
}

func validateAll[T interface{ Validate() error }](name string, items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
	}
	return nil
}

// decodeObject unmarshals raw into dst only if raw is a JSON object.
func decodeObject(raw []byte, dst *models.Document) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if probe == nil {
		return errors.New("document is not a JSON object")
	}
	return json.Unmarshal(raw, dst)
}

// newID returns a time-ordered UUIDv7 string.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
