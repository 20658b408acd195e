package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/api"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// enter navigates to view and reports whether it rendered. A redirect has
// already been announced by the time enter returns false.
func (a *App) enter(ctx context.Context, view string) bool {
	res, err := a.nav.Navigate(ctx, view)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return false
	}
	switch {
	case res.Pending:
		fmt.Fprintln(a.out, "Loading...")
		return false
	case res.View != view:
		return false
	}
	return true
}

// enterItem enters the view of one item under prefix. An item that cannot
// form a view is an ErrInvalidArgument and nothing is navigated.
func (a *App) enterItem(ctx context.Context, prefix, name, item string) (bool, error) {
	view := prefix + item
	if !gate.Known(view) {
		return false, fmt.Errorf("%w: %s %q", common.ErrInvalidArgument, name, item)
	}
	return a.enter(ctx, view), nil
}

// Open moves to an arbitrary view, e.g. "open /profile".
func (a *App) Open(ctx context.Context, view string) error {
	res, err := a.nav.Navigate(ctx, view)
	if err != nil {
		return err
	}
	if res.Pending {
		fmt.Fprintln(a.out, "Loading...")
		return nil
	}
	fmt.Fprintf(a.out, "View: %s\n", res.View)
	return nil
}

// Dashboard prints popular stocks, saved analyses and market news. Each
// section reports its own failure.
func (a *App) Dashboard(ctx context.Context) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	d := a.research.Dashboard(ctx)

	fmt.Fprintln(a.out, "== Popular stocks ==")
	if d.PopularErr != nil {
		fmt.Fprintln(a.out, "unavailable:", d.PopularErr)
	}
	for _, s := range d.Popular {
		fmt.Fprintf(a.out, "  %-6s %s\n", s.Symbol, s.Name)
	}

	fmt.Fprintln(a.out, "== Saved analyses ==")
	if d.SavedErr != nil {
		fmt.Fprintln(a.out, "unavailable:", d.SavedErr)
	}
	a.printSaved(d.Saved)

	fmt.Fprintln(a.out, "== Market news ==")
	if d.NewsErr != nil {
		fmt.Fprintln(a.out, "unavailable:", d.NewsErr)
	} else {
		a.printJSON(d.News)
	}
	return nil
}

// Stock prints price data and company details: "stock AAPL [timeframe]".
func (a *App) Stock(ctx context.Context, symbol, timeframe string) error {
	if ok, err := a.enterItem(ctx, gate.StockAnalysisPrefix, "symbol", strings.ToUpper(symbol)); !ok {
		return err
	}
	if timeframe == "" {
		timeframe = api.DefaultTimeframe
	}
	data, err := a.api.StockData(ctx, symbol, timeframe)
	if err != nil {
		return err
	}
	details, err := a.api.StockDetails(ctx, symbol)
	if err != nil {
		return err
	}
	a.printJSON(details)
	a.printJSON(data)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	res, err := a.api.SearchStocks(ctx, query)
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

func (a *App) Popular(ctx context.Context) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	list, err := a.api.PopularStocks(ctx)
	if err != nil {
		return err
	}
	for _, s := range list {
		fmt.Fprintf(a.out, "%-6s %s\n", s.Symbol, s.Name)
	}
	return nil
}

// Analysis prints the causal factor analysis for a symbol.
func (a *App) Analysis(ctx context.Context, symbol string) error {
	if ok, err := a.enterItem(ctx, gate.StockAnalysisPrefix, "symbol", strings.ToUpper(symbol)); !ok {
		return err
	}
	res, err := a.api.CausalAnalysis(ctx, symbol)
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

func (a *App) Recommend(ctx context.Context, symbol string) error {
	if ok, err := a.enterItem(ctx, gate.StockAnalysisPrefix, "symbol", strings.ToUpper(symbol)); !ok {
		return err
	}
	res, err := a.api.Recommendation(ctx, symbol)
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

func (a *App) Sector(ctx context.Context, sector string) error {
	if ok, err := a.enterItem(ctx, gate.SectorAnalysisPrefix, "sector", sector); !ok {
		return err
	}
	res, err := a.api.SectorAnalysis(ctx, sector)
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

// News prints news for a symbol, the market ("news market") or a sector
// ("news sector <name>").
func (a *App) News(ctx context.Context, args []string) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}

	var (
		res json.RawMessage
		err error
	)
	switch {
	case len(args) == 0 || args[0] == "market":
		res, err = a.api.MarketNews(ctx)
	case args[0] == "sector" && len(args) > 1:
		res, err = a.api.SectorNews(ctx, strings.Join(args[1:], " "))
	default:
		res, err = a.api.StockNews(ctx, args[0])
	}
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

func (a *App) Saved(ctx context.Context) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	list, err := a.api.SavedAnalyses(ctx)
	if err != nil {
		return err
	}
	a.printSaved(list)
	return nil
}

// Save stores the current recommendation for symbol together with notes
// typed by the user.
func (a *App) Save(ctx context.Context, symbol string) error {
	if ok, err := a.enterItem(ctx, gate.StockAnalysisPrefix, "symbol", strings.ToUpper(symbol)); !ok {
		return err
	}

	notes, err := GetMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}

	entry := models.SavedAnalysis{Symbol: strings.ToUpper(symbol), Notes: notes}
	if rec, err := a.api.Recommendation(ctx, symbol); err == nil {
		var r struct {
			Name           string          `json:"name"`
			Recommendation string          `json:"recommendation"`
			Factors        json.RawMessage `json:"factors"`
		}
		if json.Unmarshal(rec, &r) == nil {
			entry.Name, entry.Recommendation, entry.Factors = r.Name, r.Recommendation, r.Factors
		}
	}

	if _, err := a.api.SaveAnalysis(ctx, entry); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved analysis for %s\n", entry.Symbol)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	if err := a.api.DeleteSavedAnalysis(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *App) Notes(ctx context.Context, symbol string) error {
	if ok, err := a.enterItem(ctx, gate.StockAnalysisPrefix, "symbol", strings.ToUpper(symbol)); !ok {
		return err
	}
	res, err := a.api.StockNotes(ctx, symbol)
	if err != nil {
		return err
	}
	a.printJSON(res)
	return nil
}

// Note replaces the notes of a saved analysis.
func (a *App) Note(ctx context.Context, id string) error {
	if !a.enter(ctx, gate.DashboardView) {
		return nil
	}
	notes, err := GetMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}
	if err := a.api.UpdateNote(ctx, id, models.NoteUpdate{Notes: notes}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated notes of %s\n", id)
	return nil
}

func (a *App) printSaved(list []models.SavedAnalysis) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "  (none)")
		return
	}
	for _, s := range list {
		fmt.Fprintf(a.out, "  [%s] %-6s %-12s %s\n", s.ID, s.Symbol, s.Recommendation, s.Notes)
	}
}

func (a *App) printJSON(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Fprintln(a.out, string(raw))
		return
	}
	fmt.Fprintln(a.out, buf.String())
}
