package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/credentials"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// CredentialStore is the credential holder the Manager writes to. The
// Manager is its only writer.
type CredentialStore interface {
	Load(ctx context.Context) (string, bool)
	Save(ctx context.Context, cred string)
	Clear(ctx context.Context)
}

// Identity answers "who am I" for the currently stored credential.
type Identity interface {
	WhoAmI(ctx context.Context) (models.User, error)
}

// Listener is called synchronously after every state change, in the order
// changes are applied. Listeners may read Current but must not call
// Initialize, Login, Logout or Invalidate.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Manager owns the session state.
type Manager struct {
	store  CredentialStore
	logger logging.Logger
	now    func() time.Time

	// writeMu serializes mutations together with their notifications, so
	// listeners observe changes one at a time and in order.
	writeMu sync.Mutex

	mu     sync.RWMutex
	state  State
	subs   []subscription
	nextID int

	// guarded by writeMu
	invalidated bool
	generation  uint64

	initOnce sync.Once
	done     chan struct{}
}

func NewManager(store CredentialStore, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Manager{
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
		state:  initialState(),
		done:   make(chan struct{}),
	}
}

// Current returns a consistent snapshot of the session.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn for state changes and returns a func that removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// apply stores next and notifies listeners when it differs from the current
// state. Callers hold writeMu.
func (m *Manager) apply(next State) {
	m.mu.Lock()
	if m.state.equal(next) {
		m.mu.Unlock()
		return
	}
	m.state = next
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Ready is closed once Initialize has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.done
}

// Wait blocks until Initialize has finished or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", common.ErrSessionNotReady, ctx.Err())
	}
}

// Initialize decides the session from the stored credential. With no
// credential it finishes unauthenticated without calling id. Otherwise the
// credential is validated through id; any failure clears it. Only the first
// call does any work; later calls wait for it and return its result. After a
// Login the session is already decided and id is not consulted.
func (m *Manager) Initialize(ctx context.Context, id Identity) State {
	m.initOnce.Do(func() {
		defer close(m.done)
		m.initialize(ctx, id)
	})
	<-m.done
	return m.Current()
}

func (m *Manager) initialize(ctx context.Context, id Identity) {
	m.writeMu.Lock()
	next := m.Current()
	if next.started {
		// A Login already decided the session; the stored credential is
		// the one it just saved.
		m.writeMu.Unlock()
		m.logger.Debug(ctx, "session already decided, skipping validation", "phase", next.Phase().String())
		return
	}
	next.started = true
	next.Loading = true
	m.apply(next)
	generation := m.generation
	cred, ok := m.store.Load(ctx)
	m.writeMu.Unlock()

	var (
		user models.User
		err  error
	)
	if ok {
		m.describe(ctx, cred)
		user, err = id.WhoAmI(ctx)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	next = m.Current()
	next.Loading = false
	switch {
	case m.generation != generation:
		// Login or Logout ran while validating; their result stands.
	case !ok:
		next.Authenticated = false
		next.User = nil
	case err != nil:
		m.logger.Warn(ctx, "stored credential rejected", "error", err)
		m.store.Clear(ctx)
		next.Authenticated = false
		next.User = nil
	default:
		next.Authenticated = true
		next.User = &user
	}
	m.apply(next)
	m.logger.Info(ctx, "session initialized", "phase", next.Phase().String(), "user", next.UserName())
}

func (m *Manager) describe(ctx context.Context, cred string) {
	d, err := credentials.Describe(cred)
	if err != nil {
		return
	}
	if d.Expired(m.now()) {
		m.logger.Debug(ctx, "stored credential is past its expiry", "subject", d.Subject, "expires_at", d.ExpiresAt)
		return
	}
	m.logger.Debug(ctx, "stored credential found", "subject", d.Subject, "expires_at", d.ExpiresAt)
}

// Login records a credential and profile obtained from a successful login
// request. It makes no network call and ends any invalidation episode.
func (m *Manager) Login(ctx context.Context, cred string, user models.User) error {
	if cred == "" {
		return fmt.Errorf("login: %w", common.ErrMalformedCredential)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.store.Save(ctx, cred)
	m.invalidated = false
	m.generation++

	next := m.Current()
	next.started = true
	next.Authenticated = true
	next.User = &user
	next.Loading = false
	m.apply(next)

	m.logger.Info(ctx, "logged in", "user", user.Name)
	return nil
}

// Logout forgets the credential and the user. Calling it while logged out
// changes nothing.
func (m *Manager) Logout(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.generation++
	m.logoutLocked(ctx)
}

func (m *Manager) logoutLocked(ctx context.Context) {
	m.store.Clear(ctx)

	next := m.Current()
	next.Authenticated = false
	next.User = nil
	m.apply(next)
}

// Invalidate is the logout forced by an authorization failure on a request
// sent with usedCred. It returns true only for the call that opens a new
// invalidation episode; the episode lasts until the next Login. A failure
// for a credential other than the one currently stored is stale and
// ignored.
func (m *Manager) Invalidate(ctx context.Context, usedCred string) bool {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if current, ok := m.store.Load(ctx); ok && current != usedCred {
		m.logger.Debug(ctx, "ignoring authorization failure for a replaced credential")
		return false
	}
	if m.invalidated {
		return false
	}
	m.invalidated = true
	m.logoutLocked(ctx)

	m.logger.Warn(ctx, "session invalidated by authorization failure")
	return true
}
