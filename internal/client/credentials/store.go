package credentials

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/storage"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/filex"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// Reader is the read-only view handed to the request pipeline.
type Reader interface {
	Load(ctx context.Context) (string, bool)
}

// Store is the process-wide credential holder. Writes go through to the
// backend and are mirrored in memory; once the backend fails the Store
// serves memory only.
type Store struct {
	mu       sync.RWMutex
	backend  Backend
	logger   logging.Logger
	mem      string
	loaded   bool
	degraded bool
}

var _ Reader = (*Store)(nil)

// NewStore wraps backend. A nil backend gives a memory-only store that is
// not considered degraded.
func NewStore(backend Backend, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Store{backend: backend, logger: logger}
}

// NewMemoryStore returns a store without durable storage.
func NewMemoryStore() *Store {
	return NewStore(nil, nil)
}

// Open opens the profile database at path. If it cannot be opened the
// returned Store is already degraded; Open itself never fails.
func Open(ctx context.Context, path string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}

	abs, err := filex.EnsureParentDir(path)
	if err != nil {
		return newDegraded(ctx, logger, err)
	}

	db, err := storage.InitDatabase(ctx, abs)
	if err != nil {
		return newDegraded(ctx, logger, err)
	}

	logger.Debug(ctx, "credential storage opened", "path", abs)
	return NewStore(NewSQLiteBackend(db), logger)
}

func newDegraded(ctx context.Context, logger logging.Logger, cause error) *Store {
	s := NewStore(nil, logger)
	s.degradeLocked(ctx, cause)
	return s
}

// Load returns the current credential, if any.
func (s *Store) Load(ctx context.Context) (string, bool) {
	s.mu.RLock()
	if s.loaded || s.backend == nil || s.degraded {
		cred := s.mem
		s.mu.RUnlock()
		return cred, cred != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded || s.degraded {
		return s.mem, s.mem != ""
	}

	cred, ok, err := s.backend.Load(ctx)
	if err != nil {
		s.degradeLocked(ctx, err)
		return s.mem, s.mem != ""
	}
	if ok {
		s.mem = cred
	}
	s.loaded = true
	return s.mem, s.mem != ""
}

// Save stores cred. Backend failures degrade the store; the credential is
// still retained in memory.
func (s *Store) Save(ctx context.Context, cred string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem = cred
	s.loaded = true
	if s.backend == nil || s.degraded {
		return
	}
	if err := s.backend.Save(ctx, cred); err != nil {
		s.degradeLocked(ctx, err)
	}
}

// Clear erases the credential. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem = ""
	s.loaded = true
	if s.backend == nil || s.degraded {
		return
	}
	if err := s.backend.Clear(ctx); err != nil {
		s.degradeLocked(ctx, err)
	}
}

// Degraded reports whether durable storage has been given up on.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// SavedAt reports when the credential was last persisted. It is false for
// memory-only and degraded stores.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.backend.(interface {
		SavedAt(ctx context.Context) (time.Time, bool, error)
	})
	if !ok || s.degraded {
		return time.Time{}, false
	}
	at, found, err := b.SavedAt(ctx)
	if err != nil {
		return time.Time{}, false
	}
	return at, found
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.backend.(io.Closer)
	if !ok {
		return nil
	}
	return c.Close()
}

// degradeLocked must be called with mu held, or before the store is shared.
func (s *Store) degradeLocked(ctx context.Context, cause error) {
	if s.degraded {
		return
	}
	s.degraded = true
	s.logger.Warn(ctx, "credential storage unavailable, keeping credential in memory",
		"error", errors.Join(common.ErrStorageUnavailable, cause))
}
