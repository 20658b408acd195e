package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// Request describes one outbound call. Path is relative to the pipeline's
// base URL. Body, when set, is sent as JSON.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         any
	RequiresAuth bool
}

// Kind classifies an Outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindAuthFailure
	KindNetworkFailure
	KindServerFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAuthFailure:
		return "auth_failure"
	case KindNetworkFailure:
		return "network_failure"
	case KindServerFailure:
		return "server_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of Send. Status is zero when no response
// arrived. Err carries the transport or body read error; a non-success
// status keeps its kind even when its body could not be read.
type Outcome struct {
	Kind      Kind
	Status    int
	Payload   []byte
	Err       error
	RequestID string
}

func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Decode unmarshals a successful payload into v.
func (o Outcome) Decode(v any) error {
	if o.Kind != KindSuccess {
		return o.AsError()
	}
	if len(o.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(o.Payload, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Message returns the human readable message the server put in an error
// body, or "" when there is none.
func (o Outcome) Message() string {
	if len(o.Payload) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(o.Payload, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Error != "":
		return body.Error
	default:
		return body.Msg
	}
}

// AsError converts a non-success outcome to an error wrapping the matching
// sentinel from common. It returns nil for KindSuccess.
func (o Outcome) AsError() error {
	msg := o.Message()
	switch o.Kind {
	case KindSuccess:
		return nil
	case KindAuthFailure:
		if msg != "" {
			return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
		}
		return common.ErrUnauthorized
	case KindNetworkFailure:
		if o.Err != nil {
			return fmt.Errorf("%w: %w", common.ErrUnavailable, o.Err)
		}
		return common.ErrUnavailable
	default:
		if msg == "" {
			msg = http.StatusText(o.Status)
		}
		return fmt.Errorf("%w: %d %s", common.ErrServer, o.Status, msg)
	}
}

func classify(status int) Kind {
	switch {
	case status >= 200 && status < 300:
		return KindSuccess
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthFailure
	default:
		return KindServerFailure
	}
}
