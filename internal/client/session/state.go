// Package session is the single source of truth for whether the client is
// authenticated and as whom.
//
// A Manager is constructed once per process and passed to whoever needs it.
// Its state only changes through Initialize, Login, Logout and Invalidate;
// everything else reads snapshots or subscribes to changes.
package session

import "github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot. Authenticated implies User != nil.
// Loading is true until Initialize has decided Authenticated.
type State struct {
	User          *models.User
	Authenticated bool
	Loading       bool

	started bool
}

// initialState is what a fresh Manager reports: nothing decided yet.
func initialState() State {
	return State{Loading: true}
}

func (s State) Phase() Phase {
	switch {
	case !s.started:
		return PhaseUninitialized
	case s.Loading:
		return PhaseLoading
	case s.Authenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// UserName returns the user's name, or "" when there is no user.
func (s State) UserName() string {
	if s.User == nil {
		return ""
	}
	return s.User.Name
}

func (s State) equal(o State) bool {
	if s.Authenticated != o.Authenticated || s.Loading != o.Loading || s.started != o.started {
		return false
	}
	if (s.User == nil) != (o.User == nil) {
		return false
	}
	return s.User == nil || *s.User == *o.User
}
