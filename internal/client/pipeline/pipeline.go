// Package pipeline sends every request the client makes to the remote API.
//
// Send attaches the stored credential, dispatches the request once, and
// classifies the response into an Outcome. When the server rejects a
// credential the pipeline asks the session to invalidate itself and, for the
// first rejection of an episode only, tells the effect handler so it can
// redirect to the login view. Send never returns a transport error or panics
// past its boundary; failures are Outcome values.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/credentials"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// maxPayload bounds how much of a response body is read.
const maxPayload = 8 << 20

// ErrPayloadTooLarge is set on the Outcome of a response whose body exceeds
// maxPayload.
var ErrPayloadTooLarge = errors.New("response body too large")

// Invalidator performs the forced logout after an authorization failure on a
// request sent with usedCred. It reports whether this call opened a new
// invalidation episode.
type Invalidator interface {
	Invalidate(ctx context.Context, usedCred string) bool
}

// EffectHandler receives the session-invalidated effect, at most once per
// invalidation episode.
type EffectHandler interface {
	SessionInvalidated(ctx context.Context)
}

type Pipeline struct {
	baseURL *url.URL
	client  *http.Client
	timeout time.Duration

	creds   credentials.Reader
	session Invalidator
	effects EffectHandler
	logger  logging.Logger
}

type Option func(*Pipeline)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithTimeout bounds each request. Zero means no per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New builds a pipeline rooted at baseURL. effects may be nil when nobody
// needs the redirect signal.
func New(baseURL string, creds credentials.Reader, session Invalidator, effects EffectHandler, opts ...Option) (*Pipeline, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	p := &Pipeline{
		baseURL: u,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		creds:   creds,
		session: session,
		effects: effects,
		logger:  logging.Nop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

// Send dispatches req exactly once and returns its classified outcome.
func (p *Pipeline) Send(ctx context.Context, req Request) (out Outcome) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	id := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: KindNetworkFailure, Err: fmt.Errorf("panic: %v", r)}
		}
		out.RequestID = id
		p.logOutcome(ctx, req, out, time.Since(start))
	}()

	var cred string
	if req.RequiresAuth && p.creds != nil {
		if c, ok := p.creds.Load(ctx); ok {
			cred = c
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	httpReq, err := p.build(ctx, req, id, cred)
	if err != nil {
		return Outcome{Kind: KindNetworkFailure, Err: err}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Outcome{Kind: KindNetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	// The status decides the kind. An unreadable body only downgrades a
	// success, which would otherwise be decoded from partial data.
	kind := classify(resp.StatusCode)
	payload, err := readPayload(resp.Body)
	if err != nil && kind == KindSuccess {
		return Outcome{Kind: KindNetworkFailure, Status: resp.StatusCode, Err: err}
	}

	out = Outcome{Kind: kind, Status: resp.StatusCode, Payload: payload, Err: err}
	if out.Kind == KindAuthFailure {
		p.authFailed(ctx, cred)
	}
	return out
}

func readPayload(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return b, fmt.Errorf("read response: %w", err)
	}
	if len(b) > maxPayload {
		return nil, fmt.Errorf("read response: %w (limit %d bytes)", ErrPayloadTooLarge, maxPayload)
	}
	return b, nil
}

func (p *Pipeline) build(ctx context.Context, req Request, id, cred string) (*http.Request, error) {
	u := *p.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(common.RequestIDHeaderName, id)
	if cred != "" {
		(&oauth2.Token{AccessToken: cred}).SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

// authFailed runs the forced logout. The effect fires only for the call
// that opened the episode; late failures are still returned to their
// callers but change nothing.
func (p *Pipeline) authFailed(ctx context.Context, cred string) {
	if p.session == nil {
		return
	}
	if !p.session.Invalidate(ctx, cred) {
		return
	}
	if p.effects != nil {
		p.effects.SessionInvalidated(ctx)
	}
}

func (p *Pipeline) logOutcome(ctx context.Context, req Request, out Outcome, elapsed time.Duration) {
	args := []any{
		"method", req.Method,
		"path", req.Path,
		"status", out.Status,
		"kind", out.Kind.String(),
		"request_id", out.RequestID,
		"elapsed", elapsed,
	}
	switch out.Kind {
	case KindAuthFailure:
		p.logger.Warn(ctx, "request rejected", args...)
	case KindNetworkFailure:
		p.logger.Debug(ctx, "request failed", append(args, "error", out.Err)...)
	default:
		if out.Err != nil {
			args = append(args, "error", out.Err)
		}
		p.logger.Debug(ctx, "request done", args...)
	}
}
