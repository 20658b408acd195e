package api

import (
	"context"
	"encoding/json"
	"strings"
)

func (c *Client) StockNews(ctx context.Context, symbol string) (json.RawMessage, error) {
	s, err := segment("symbol", symbol)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/news/"+strings.ToUpper(s), nil)
}

func (c *Client) MarketNews(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "/news/market", nil)
}

func (c *Client) SectorNews(ctx context.Context, sector string) (json.RawMessage, error) {
	s, err := segment("sector", sector)
	if err != nil {
		return nil, err
	}
	return c.raw(ctx, "/news/sector/"+s, nil)
}
