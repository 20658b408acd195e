package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/apitest"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/config"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// stubPasswords makes getPassword return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		require.NotEmpty(t, pws, "unexpected password prompt")
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

type harness struct {
	fake    *apitest.Server
	baseURL string
	profile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := apitest.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)
	fake.AddUser("Ada", "ada@x.com", "pw")
	return &harness{
		fake:    fake,
		baseURL: srv.URL + "/api",
		profile: filepath.Join(t.TempDir(), "profile", "stockadvisor.db"),
	}
}

// app builds an App reading input and writing to the returned buffer.
func (h *harness) app(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		APIBaseURL:     h.baseURL,
		ProfilePath:    h.profile,
		RequestTimeout: 5 * time.Second,
	}
	a, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	var out bytes.Buffer
	a.out = &out
	a.reader = bufio.NewReader(strings.NewReader(input))
	return a, &out
}

func (h *harness) loggedIn(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	stubPasswords(t, "pw")
	a, out := h.app(t, "ada@x.com\n")
	a.Start(context.Background())
	require.NoError(t, a.Login(context.Background()))
	return a, out
}

func TestNewApp_RejectsBadBaseURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "127.0.0.1:5001", ProfilePath: filepath.Join(t.TempDir(), "p.db")}
	_, err := NewApp(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestStart_WithoutCredentialStaysOffline(t *testing.T) {
	h := newHarness(t)
	a, out := h.app(t, "")

	st := a.Start(context.Background())

	assert.False(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Zero(t, h.fake.TotalHits())
	assert.NotContains(t, out.String(), "Welcome back")
	assert.Equal(t, "(unauthenticated)", a.getStatus())
}

func TestLogin_MovesToDashboard(t *testing.T) {
	h := newHarness(t)
	a, out := h.loggedIn(t)

	assert.Contains(t, out.String(), "Welcome, Ada!")
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, gate.DashboardView, a.nav.Current())
	assert.Equal(t, "(Ada /dashboard)", a.getStatus())
}

func TestLogin_WrongPasswordStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, "nope")
	a, out := h.app(t, "ada@x.com\n")
	a.Start(context.Background())

	err := a.Login(context.Background())

	require.Error(t, err)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, gate.LoginView, a.nav.Current())
	assert.NotContains(t, out.String(), "expired")
}

func TestRestart_RestoresSession(t *testing.T) {
	h := newHarness(t)
	first, _ := h.loggedIn(t)
	first.Close()
	before := h.fake.Hits("/auth/me")

	second, out := h.app(t, "")
	st := second.Start(context.Background())

	require.True(t, st.Authenticated)
	assert.Equal(t, "Ada", st.UserName())
	assert.Equal(t, before+1, h.fake.Hits("/auth/me"))
	assert.Contains(t, out.String(), "Welcome back, Ada!")
	assert.Equal(t, gate.DashboardView, second.nav.Current())
}

func TestLogout_ThenRestartMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	first, out := h.loggedIn(t)

	require.NoError(t, first.Logout(context.Background()))
	require.NoError(t, first.Logout(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Logged out"))
	assert.Equal(t, gate.LoginView, first.nav.Current())
	first.Close()

	before := h.fake.TotalHits()
	second, _ := h.app(t, "")
	st := second.Start(context.Background())

	assert.False(t, st.Authenticated)
	assert.Equal(t, before, h.fake.TotalHits())
}

func TestSessionExpiry_AnnouncedOnce(t *testing.T) {
	h := newHarness(t)
	a, out := h.loggedIn(t)

	h.fake.RotateSecret()
	require.NoError(t, a.Dashboard(context.Background()))

	assert.Equal(t, 1, strings.Count(out.String(), "Your session has expired"))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, gate.LoginView, a.nav.Current())
}

func TestProtectedCommand_LoggedOutNeverCallsAPI(t *testing.T) {
	h := newHarness(t)
	a, out := h.app(t, "")
	a.Start(context.Background())

	require.NoError(t, a.Popular(context.Background()))
	require.NoError(t, a.Stock(context.Background(), "aapl", ""))

	assert.Zero(t, h.fake.TotalHits())
	assert.Contains(t, out.String(), "/dashboard requires login.")
	assert.Contains(t, out.String(), "/analysis/stock/AAPL requires login.")
	assert.Equal(t, gate.LoginView, a.nav.Current())
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	t.Run("mismatched confirmation", func(t *testing.T) {
		stubPasswords(t, "pw1", "pw2")
		a, _ := h.app(t, "Bob\nbob@x.com\n")
		a.Start(context.Background())

		require.ErrorIs(t, a.Register(context.Background()), errPasswordMismatch)
		assert.Zero(t, h.fake.Hits("/auth/register"))
	})

	t.Run("success moves to login", func(t *testing.T) {
		stubPasswords(t, "pw", "pw")
		a, out := h.app(t, "Bob\nbob@x.com\n")
		a.Start(context.Background())

		require.NoError(t, a.Register(context.Background()))
		assert.Contains(t, out.String(), "User registered successfully")
		assert.Equal(t, gate.LoginView, a.nav.Current())
		assert.False(t, a.isLoggedIn())
	})
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	a, out := h.loggedIn(t)

	out.Reset()
	require.NoError(t, a.Status(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Session: authenticated")
	assert.Contains(t, s, "User:    Ada <ada@x.com>")
	assert.Contains(t, s, "View:    /dashboard")
	assert.Contains(t, s, "Saved:")
	assert.Contains(t, s, "Token:   valid until")
	assert.NotContains(t, s, "Profile: unavailable")

	require.NoError(t, a.Logout(context.Background()))
	out.Reset()
	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "Session: unauthenticated")
	assert.Contains(t, out.String(), "Token:   none")
}

func TestDegradedProfile_Warns(t *testing.T) {
	h := newHarness(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	h.profile = filepath.Join(blocker, "stockadvisor.db")

	stubPasswords(t, "pw")
	a, out := h.app(t, "ada@x.com\n")
	a.Start(context.Background())
	assert.Contains(t, out.String(), "profile storage is unavailable")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())

	out.Reset()
	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "Profile: unavailable")
}

func TestResearchCommands(t *testing.T) {
	h := newHarness(t)
	a, out := h.loggedIn(t)
	ctx := context.Background()

	out.Reset()
	require.NoError(t, a.Stock(ctx, "aapl", ""))
	assert.Contains(t, out.String(), `"timeframe": "1mo"`)
	assert.Equal(t, gate.StockAnalysisPrefix+"AAPL", a.nav.Current())

	out.Reset()
	require.NoError(t, a.Sector(ctx, "Energy"))
	assert.Contains(t, out.String(), "sector_analysis")
	assert.Equal(t, gate.SectorAnalysisPrefix+"Energy", a.nav.Current())

	out.Reset()
	require.NoError(t, a.News(ctx, []string{"sector", "Energy"}))
	assert.Contains(t, out.String(), "sector_news")

	out.Reset()
	require.NoError(t, a.Popular(ctx))
	assert.Contains(t, out.String(), "AAPL")

}

func TestResearchCommands_RejectInvalidItems(t *testing.T) {
	h := newHarness(t)
	a, _ := h.loggedIn(t)
	ctx := context.Background()
	before := h.fake.TotalHits()

	err := a.Analysis(ctx, "a/b")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `symbol "A/B"`)

	require.ErrorIs(t, a.Stock(ctx, "", ""), common.ErrInvalidArgument)
	require.ErrorIs(t, a.Notes(ctx, "x/y"), common.ErrInvalidArgument)

	err = a.Sector(ctx, "Energy/Oil")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `sector "Energy/Oil"`)

	assert.Equal(t, before, h.fake.TotalHits())
	assert.Equal(t, gate.DashboardView, a.nav.Current(), "view unchanged")
}

func TestSaveListAndDelete(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, "pw")
	a, out := h.app(t, "ada@x.com\nwatch earnings\n\n")
	ctx := context.Background()
	a.Start(ctx)
	require.NoError(t, a.Login(ctx))

	require.NoError(t, a.Save(ctx, "aapl"))
	assert.Contains(t, out.String(), "Saved analysis for AAPL")

	out.Reset()
	require.NoError(t, a.Saved(ctx))
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "watch earnings")

	out.Reset()
	require.NoError(t, a.Dashboard(ctx))
	s := out.String()
	assert.Contains(t, s, "== Popular stocks ==")
	assert.Contains(t, s, "watch earnings")
	assert.NotContains(t, s, "unavailable")

	require.NoError(t, a.Delete(ctx, "1"))
	out.Reset()
	require.NoError(t, a.Saved(ctx))
	assert.Contains(t, out.String(), "(none)")
}

func TestWhoAmI(t *testing.T) {
	h := newHarness(t)
	a, out := h.loggedIn(t)

	out.Reset()
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Ada <ada@x.com> id=1")
	assert.Equal(t, gate.ProfileView, a.nav.Current())
}
