// Package gate decides what a view shows for a given session snapshot.
//
// Public views always render. Protected views render only for an
// authenticated session, show a loading placeholder while the session is
// still being decided, and otherwise redirect to the login view.
package gate

import (
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/session"
)

const (
	HomeView      = "/"
	LoginView     = "/login"
	RegisterView  = "/register"
	DashboardView = "/dashboard"
	ProfileView   = "/profile"

	StockAnalysisPrefix  = "/analysis/stock/"
	SectorAnalysisPrefix = "/analysis/sector/"
)

type route struct {
	path      string
	prefix    bool
	protected bool
}

var routes = []route{
	{path: HomeView},
	{path: LoginView},
	{path: RegisterView},
	{path: DashboardView, protected: true},
	{path: ProfileView, protected: true},
	{path: StockAnalysisPrefix, prefix: true, protected: true},
	{path: SectorAnalysisPrefix, prefix: true, protected: true},
}

func (r route) match(view string) bool {
	if !r.prefix {
		return view == r.path
	}
	return strings.HasPrefix(view, r.path) && len(view) > len(r.path) && !strings.Contains(view[len(r.path):], "/")
}

// Known reports whether view is one of the application's views.
func Known(view string) bool {
	for _, r := range routes {
		if r.match(view) {
			return true
		}
	}
	return false
}

// Protected reports whether view requires an authenticated session.
func Protected(view string) bool {
	for _, r := range routes {
		if r.match(view) {
			return r.protected
		}
	}
	return false
}

type Decision int

const (
	RenderLoading Decision = iota
	RenderView
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case RenderLoading:
		return "loading"
	case RenderView:
		return "render"
	case RedirectToLogin:
		return "redirect_to_login"
	default:
		return "unknown"
	}
}

// Resolve maps a session snapshot and a target view to a decision. It
// never redirects while the session is loading.
func Resolve(st session.State, view string) Decision {
	switch {
	case !Protected(view):
		return RenderView
	case st.Loading:
		return RenderLoading
	case st.Authenticated:
		return RenderView
	default:
		return RedirectToLogin
	}
}
