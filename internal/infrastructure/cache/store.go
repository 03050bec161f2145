package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/metrics"
)

var (
	// ErrStorageUnavailable means the backing document could not be read or written.
	ErrStorageUnavailable = errors.New("cache storage unavailable")

	// ErrCorruptDocument means the backing document exists but is not a cache document.
	ErrCorruptDocument = fmt.Errorf("%w: corrupt document", ErrStorageUnavailable)

	ErrEmptyKey = errors.New("cache key must not be empty")
)

// StoreConfig holds configuration for a Store.
type StoreConfig struct {
	// Name identifies the key space in logs and metrics, e.g. "urls".
	Name string
	// Backend labels document write metrics. Defaults to "file".
	Backend string
	// Expiry decides when entries go stale. Nil means NoExpiry.
	Expiry Expiry
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Store is a persistent key/value cache of delivered media.
// The whole key space lives in one document that is loaded once and
// rewritten after every mutation, so the document is the source of truth
// across restarts.
//
// Store is safe for concurrent use within one process. Two processes must
// not share a document.
type Store struct {
	doc     repository.DocumentStore
	name    string
	backend string
	expiry  Expiry
	now     func() time.Time

	mu      sync.Mutex
	loaded  bool
	entries map[string]json.RawMessage
}

var _ MediaCache = (*Store)(nil)

// NewStore creates a Store over doc. Nothing is read until Initialize or
// the first operation.
func NewStore(doc repository.DocumentStore, cfg StoreConfig) *Store {
	if cfg.Expiry == nil {
		cfg.Expiry = NoExpiry{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Backend == "" {
		cfg.Backend = metrics.BackendFile
	}
	return &Store{
		doc:     doc,
		name:    cfg.Name,
		backend: cfg.Backend,
		expiry:  cfg.Expiry,
		now:     cfg.Now,
	}
}

// Name returns the store's key space name.
func (s *Store) Name() string {
	return s.name
}

// Initialize loads the document, creating an empty one when none exists.
// Calling it again after a successful load does nothing.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensureLoaded(ctx)
}

// Get returns a copy of the payload stored under key.
// Absent and unreadable entries are a miss. An expired entry is removed
// from the document and reported as a miss.
func (s *Store) Get(ctx context.Context, key string) (*model.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		s.record(metrics.CacheOpGet, metrics.CacheStatusError)
		return nil, err
	}

	raw, ok := s.entries[key]
	if !ok {
		s.record(metrics.CacheOpGet, metrics.CacheStatusMiss)
		return nil, nil
	}

	payload, storedAt, err := decodeEntry(raw)
	if err != nil {
		// Left in place: a later Set for the key replaces it.
		s.record(metrics.CacheOpGet, metrics.CacheStatusMalformed)
		slog.Warn("unreadable cache entry",
			"store", s.name,
			"key", key,
			"error", err,
		)
		return nil, nil
	}

	if s.expiry.Expired(storedAt, s.now()) {
		delete(s.entries, key)
		s.record(metrics.CacheOpGet, metrics.CacheStatusExpired)
		slog.Debug("cache entry expired",
			"store", s.name,
			"key", key,
			"stored_at", storedAt,
		)
		if err := s.persist(ctx); err != nil {
			return nil, fmt.Errorf("evict %q: %w", key, err)
		}
		return nil, nil
	}

	s.record(metrics.CacheOpGet, metrics.CacheStatusHit)
	return &payload, nil
}

// Set stores payload under key stamped with the current time and persists
// the document. If persisting fails the previous entry is restored.
func (s *Store) Set(ctx context.Context, key string, payload model.Payload) error {
	if key == "" {
		s.record(metrics.CacheOpSet, metrics.CacheStatusError)
		return ErrEmptyKey
	}
	if err := payload.Validate(); err != nil {
		s.record(metrics.CacheOpSet, metrics.CacheStatusError)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		s.record(metrics.CacheOpSet, metrics.CacheStatusError)
		return err
	}

	raw, err := encodeEntry(payload, s.now())
	if err != nil {
		s.record(metrics.CacheOpSet, metrics.CacheStatusError)
		return fmt.Errorf("encode entry: %w", err)
	}

	prev, had := s.entries[key]
	s.entries[key] = raw

	if err := s.persist(ctx); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		s.record(metrics.CacheOpSet, metrics.CacheStatusError)
		return err
	}

	s.record(metrics.CacheOpSet, metrics.CacheStatusSuccess)
	return nil
}

// Delete removes the entry under key and persists the document.
// Deleting an absent key is not an error and does not write.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		s.record(metrics.CacheOpDelete, metrics.CacheStatusError)
		return err
	}

	prev, ok := s.entries[key]
	if !ok {
		s.record(metrics.CacheOpDelete, metrics.CacheStatusMiss)
		return nil
	}

	delete(s.entries, key)
	if err := s.persist(ctx); err != nil {
		s.entries[key] = prev
		s.record(metrics.CacheOpDelete, metrics.CacheStatusError)
		return err
	}

	s.record(metrics.CacheOpDelete, metrics.CacheStatusSuccess)
	return nil
}

// Len returns the number of entries in the document, stale ones included.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return len(s.entries), nil
}

// ensureLoaded reads the document on first use. Callers must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := s.doc.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrDocumentNotFound):
		s.entries = make(map[string]json.RawMessage)
		if err := s.persist(ctx); err != nil {
			s.entries = nil
			s.record(metrics.CacheOpLoad, metrics.CacheStatusError)
			return fmt.Errorf("create %s document: %w", s.name, err)
		}
		slog.Info("cache document created", "store", s.name)

	case err != nil:
		s.record(metrics.CacheOpLoad, metrics.CacheStatusError)
		return fmt.Errorf("%w: load %s document: %w", ErrStorageUnavailable, s.name, err)

	default:
		entries, err := decodeDocument(data)
		if err != nil {
			s.record(metrics.CacheOpLoad, metrics.CacheStatusError)
			return fmt.Errorf("load %s document: %w", s.name, err)
		}
		s.entries = entries
	}

	s.loaded = true
	s.record(metrics.CacheOpLoad, metrics.CacheStatusSuccess)
	metrics.CacheEntries.WithLabelValues(s.name).Set(float64(len(s.entries)))

	slog.Info("cache store loaded",
		"store", s.name,
		"entries", len(s.entries),
		"expiry", s.expiry.String(),
	)
	return nil
}

// persist rewrites the whole document. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := encodeDocument(s.entries)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", s.name, err)
	}

	start := time.Now()
	err = s.doc.Save(ctx, data)
	metrics.DocumentWriteSeconds.WithLabelValues(s.backend).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: save %s document: %w", ErrStorageUnavailable, s.name, err)
	}

	metrics.CacheEntries.WithLabelValues(s.name).Set(float64(len(s.entries)))
	return nil
}

func (s *Store) record(operation, status string) {
	metrics.CacheOperationsTotal.WithLabelValues(operation, status, s.name).Inc()
}
