// Package api is the typed client for the stock advisor REST API.
//
// Every method is a single pipeline Send. Non-success outcomes come back as
// errors wrapping the sentinels in common, so callers match them with
// errors.Is:
//
//   - common.ErrUnauthorized: the server rejected the credential
//   - common.ErrInvalidCredentials: login with a wrong email or password
//   - common.ErrUnavailable: no response
//   - common.ErrServer: any other non-2xx, with the server's message
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/pipeline"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// Sender is satisfied by *pipeline.Pipeline.
type Sender interface {
	Send(ctx context.Context, req pipeline.Request) pipeline.Outcome
}

type Client struct {
	sender Sender
}

func New(sender Sender) *Client {
	return &Client{sender: sender}
}

// do sends req and decodes a successful payload into out, which may be nil.
func (c *Client) do(ctx context.Context, req pipeline.Request, out any) error {
	o := c.sender.Send(ctx, req)
	if !o.OK() {
		return o.AsError()
	}
	if out == nil {
		return nil
	}
	return o.Decode(out)
}

// raw sends an authenticated GET and returns the payload as is.
func (c *Client) raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, pipeline.Request{Method: http.MethodGet, Path: path, Query: query, RequiresAuth: true}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// segment validates a value used as a single path segment.
func segment(name, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, "/") {
		return "", fmt.Errorf("%w: %s %q", common.ErrInvalidArgument, name, v)
	}
	return v, nil
}
