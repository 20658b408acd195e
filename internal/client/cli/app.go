package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/api"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/config"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/credentials"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/navigation"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/pipeline"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/services"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/session"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *credentials.Store
	session  *session.Manager
	nav      *navigation.Navigator
	api      *api.Client
	auth     services.AuthService
	research services.ResearchService
	reader   *bufio.Reader
	out      io.Writer

	closeOnce sync.Once
}

// NewApp builds the client stack in dependency order: store, session,
// navigator, pipeline, API client, services. Nothing talks to the network
// until Start.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	store := credentials.Open(ctx, c.ProfilePath, logger)
	sess := session.NewManager(store, logger)
	nav := navigation.New(sess, logger)

	pipe, err := pipeline.New(c.APIBaseURL, store, sess, nav,
		pipeline.WithTimeout(c.RequestTimeout),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		nav.Close()
		_ = store.Close()
		return nil, err
	}
	apiClient := api.New(pipe)

	a := &App{
		config:   c,
		logger:   logger,
		store:    store,
		session:  sess,
		nav:      nav,
		api:      apiClient,
		auth:     services.NewAuthService(apiClient, sess, logger),
		research: services.NewResearchService(apiClient),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	nav.OnRedirect(a.redirected)
	return a, nil
}

// Start validates the stored credential, if any, and lands on the
// dashboard when it is accepted.
func (a *App) Start(ctx context.Context) session.State {
	if a.store.Degraded() {
		fmt.Fprintln(a.out, "Warning: profile storage is unavailable, the session will not survive a restart")
	}

	st := a.session.Initialize(ctx, a.api)
	if st.Authenticated {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", st.UserName())
		_, _ = a.nav.Navigate(ctx, gate.DashboardView)
	}
	return st
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Start(ctx)
	a.Root(ctx)
}

// Close stops following the session and releases the profile. It is safe
// to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.nav.Close()
		if err := a.store.Close(); err != nil {
			a.logger.Warn(context.Background(), "close profile", "error", err)
		}
	})
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().Authenticated
}

func (a *App) redirected(r navigation.Redirect) {
	switch r.Reason {
	case navigation.ReasonSessionInvalidated:
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	default:
		fmt.Fprintf(a.out, "%s requires login.\n", r.From)
	}
}
