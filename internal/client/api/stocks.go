package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/pipeline"
)

// DefaultTimeframe is used by StockData when none is given.
const DefaultTimeframe = "1mo"

func (c *Client) StockData(ctx context.Context, symbol, timeframe string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	return c.raw(ctx, "/stocks/"+strings.ToUpper(s), url.Values{"timeframe": {timeframe}})
}

func (c *Client) SearchStocks(ctx context.Context, q string) (json.RawMessage, error) {
	return c.raw(ctx, "/stocks/search", url.Values{"q": {q}})
}

func (c *Client) PopularStocks(ctx context.Context) ([]models.PopularStock, error) {
	var out []models.PopularStock
	if err := c.do(ctx, pipeline.Request{Path: "/stocks/popular", RequiresAuth: true}, &out); err != nil {
		return nil, fmt.Errorf("popular stocks: %w", err)
	}
	return out, nil
}

func (c *Client) StockDetails(ctx context.Context, symbol string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/stocks/details/"+strings.ToUpper(s), nil)
}
