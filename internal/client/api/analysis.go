package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/pipeline"
)

func (c *Client) CausalAnalysis(ctx context.Context, symbol string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/analysis/causal/"+strings.ToUpper(s), nil)
}

func (c *Client) Recommendation(ctx context.Context, symbol string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/analysis/recommendation/"+strings.ToUpper(s), nil)
}

func (c *Client) SectorAnalysis(ctx context.Context, sector string) (json.RawMessage, error) {
	s, err := segment("sector", sector)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/analysis/sector/"+s, nil)
}

// SaveAnalysis stores a snapshot and returns the server's reply.
func (c *Client) SaveAnalysis(ctx context.Context, a models.SavedAnalysis) (json.RawMessage, error) {
	if _, err := segment("symbol", a.Symbol); err != nil {
		return nil, err
	}
	var out json.RawMessage
	err := c.do(ctx, pipeline.Request{Method: http.MethodPost, Path: "/analysis/save", Body: a, RequiresAuth: true}, &out)
	if err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return out, nil
}

func (c *Client) SavedAnalyses(ctx context.Context) ([]models.SavedAnalysis, error) {
	var out []models.SavedAnalysis
	if err := c.do(ctx, pipeline.Request{Path: "/analysis/saved", RequiresAuth: true}, &out); err != nil {
		return nil, fmt.Errorf("saved analyses: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteSavedAnalysis(ctx context.Context, id string) error {
	s, err := segment("id", id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, pipeline.Request{Method: http.MethodDelete, Path: "/analysis/saved/" + s, RequiresAuth: true}, nil); err != nil {
		return fmt.Errorf("delete saved analysis: %w", err)
	}
	return nil
}

func (c *Client) StockNotes(ctx context.Context, symbol string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/analysis/notes/stock/"+strings.ToUpper(s), nil)
}

func (c *Client) UpdateNote(ctx context.Context, id string, u models.NoteUpdate) error {
	s, err := segment("id", id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, pipeline.Request{Method: http.MethodPut, Path: "/analysis/notes/" + s, Body: u, RequiresAuth: true}, nil); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}
