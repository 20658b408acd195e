package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/session"
)

// getStatus renders the prompt status, e.g. "(Ada /dashboard)" or
// "(unauthenticated /login)".
func (a *App) getStatus() string {
	st := a.session.Current()

	var parts []string
	if name := st.UserName(); name != "" {
		parts = append(parts, name)
	} else if p := st.Phase(); p != session.PhaseAuthenticated {
		parts = append(parts, p.String())
	}
	if v := a.nav.Current(); v != "" && v != gate.HomeView {
		parts = append(parts, v)
	}

	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root runs the REPL on the app's input until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the stock advisor CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
