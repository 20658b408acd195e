// Package navigation tracks which view the client is on and moves it to the
// login view when the session requires it.
package navigation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/session"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// Sessions is the part of session.Manager the navigator reads.
type Sessions interface {
	Current() session.State
	Subscribe(fn session.Listener) (unsubscribe func())
}

const (
	ReasonUnauthenticated    = "unauthenticated"
	ReasonSessionInvalidated = "session_invalidated"
)

// Redirect describes a move to the login view.
type Redirect struct {
	From   string
	To     string
	Reason string
}

// Result is what Navigate did.
type Result struct {
	View     string
	Decision gate.Decision
	// Pending is set when the target is waiting for the session to finish
	// loading; the navigator moves there on its own once it has.
	Pending bool
}

type Navigator struct {
	sessions Sessions
	logger   logging.Logger
	stop     func()

	mu        sync.Mutex
	current   string
	pending   string
	listeners []func(Redirect)
}

// New starts on the home view and follows sessions until Close.
func New(sessions Sessions, logger logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Nop{}
	}
	n := &Navigator{
		sessions: sessions,
		logger:   logger.With("component", "navigation"),
		current:  gate.HomeView,
	}
	n.stop = sessions.Subscribe(n.sessionChanged)
	return n
}

func (n *Navigator) Close() {
	n.stop()
}

// Current returns the view the client is on.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// OnRedirect registers fn to be called after every redirect to the login
// view. Callbacks run outside the navigator's lock.
func (n *Navigator) OnRedirect(fn func(Redirect)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Navigate moves to view, consulting the access gate for protected views.
// Unknown views fall back to the home view.
func (n *Navigator) Navigate(ctx context.Context, view string) (Result, error) {
	if !gate.Known(view) {
		n.logger.Debug(ctx, "unknown view, going home", "view", view)
		view = gate.HomeView
	}

	st := n.sessions.Current()
	decision := gate.Resolve(st, view)

	n.mu.Lock()
	var redirect *Redirect
	res := Result{View: view, Decision: decision}
	switch decision {
	case gate.RenderView:
		n.current = view
		n.pending = ""
	case gate.RenderLoading:
		n.pending = view
		res.Pending = true
	case gate.RedirectToLogin:
		redirect = &Redirect{From: view, To: gate.LoginView, Reason: ReasonUnauthenticated}
		n.current = gate.LoginView
		n.pending = ""
		res.View = gate.LoginView
	default:
		n.mu.Unlock()
		return Result{}, fmt.Errorf("navigate %s: unexpected decision %v", view, decision)
	}
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	if redirect != nil {
		n.emit(ctx, listeners, *redirect)
	}
	return res, nil
}

// SessionInvalidated is the request pipeline's effect handler. It moves to
// the login view unless the client is already there.
func (n *Navigator) SessionInvalidated(ctx context.Context) {
	n.mu.Lock()
	if n.current == gate.LoginView {
		n.pending = ""
		n.mu.Unlock()
		n.logger.Debug(ctx, "session invalidated on the login view, not redirecting")
		return
	}
	r := Redirect{From: n.current, To: gate.LoginView, Reason: ReasonSessionInvalidated}
	n.current = gate.LoginView
	n.pending = ""
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	n.emit(ctx, listeners, r)
}

// sessionChanged settles a pending navigation once loading has finished.
func (n *Navigator) sessionChanged(st session.State) {
	if st.Loading {
		return
	}

	n.mu.Lock()
	view := n.pending
	if view == "" {
		n.mu.Unlock()
		return
	}
	n.pending = ""
	var redirect *Redirect
	switch gate.Resolve(st, view) {
	case gate.RenderView:
		n.current = view
	default:
		redirect = &Redirect{From: view, To: gate.LoginView, Reason: ReasonUnauthenticated}
		n.current = gate.LoginView
	}
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	if redirect != nil {
		n.emit(context.Background(), listeners, *redirect)
	}
}

func (n *Navigator) snapshotListeners() []func(Redirect) {
	return slices.Clone(n.listeners)
}

func (n *Navigator) emit(ctx context.Context, listeners []func(Redirect), r Redirect) {
	n.logger.Info(ctx, "redirecting to login", "from", r.From, "reason", r.Reason)
	for _, fn := range listeners {
		fn(r)
	}
}
