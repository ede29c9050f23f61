// Package capture routes client capture requests to the extraction engine
// and tracks client liveness.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single capture request.
const DefaultTimeout = 5 * time.Second

// Request types.
const (
	TypeConnect = "connect"
	TypePing    = "ping"
	TypeCapture = "capture"
)

// Response codes.
const (
	CodeDisconnected     = "DISCONNECTED"
	CodeInvalidURL       = "INVALID_URL"
	CodeTimeout          = "TIMEOUT"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

// DisconnectedMessage is shown to users whose page lost its connection.
const DisconnectedMessage = "Disconnected, please use a supported site."

// Request is a message from a client.
type Request struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Response answers a Request with the same ID.
type Response struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Success    bool           `json:"success"`
	Status     string         `json:"status,omitempty"`
	Result     *cartex.Result `json:"result,omitempty"`
	Code       string         `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// Router handles client requests. It keeps no per-client state: the caller
// passes the client's Link in and stores the Link returned.
type Router struct {
	Capturer  cartex.Capturer
	Timeout   time.Duration
	MaxMissed int
	Logger    *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates a Router with DefaultTimeout.
func NewRouter(capturer cartex.Capturer) *Router {
	return &Router{
		Capturer:  capturer,
		Timeout:   DefaultTimeout,
		MaxMissed: DefaultMaxMissed,
	}
}

// Handle processes req for a client whose link is link and returns the
// client's next link state along with the response.
func (r *Router) Handle(ctx context.Context, link Link, req Request) (Link, Response) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := r.now()

	switch req.Type {
	case TypeConnect:
		return Connect(now), Response{ID: req.ID, Type: "ready", Success: true, Status: "ready"}

	case TypePing:
		link = link.Keepalive(now, true, r.MaxMissed)
		status := "healthy"
		if !link.Alive {
			status = "disconnected"
		}
		return link, Response{ID: req.ID, Type: "pong", Success: link.Alive, Status: status}

	case TypeCapture:
		if !link.Alive {
			return link, Response{
				ID:         req.ID,
				Type:       "error",
				Code:       CodeDisconnected,
				Error:      DisconnectedMessage,
				Suggestion: "Try refreshing the page",
			}
		}
		link.LastSeen = now
		return link, r.capture(ctx, req)
	}

	return link, Response{
		ID:    req.ID,
		Type:  "error",
		Code:  CodeInvalidRequest,
		Error: fmt.Sprintf("unknown request type %q", req.Type),
	}
}

// Expire applies the keepalive deadline to link at the router's clock.
func (r *Router) Expire(link Link) Link {
	return link.Expire(r.now(), KeepaliveInterval, r.MaxMissed)
}

func (r *Router) capture(ctx context.Context, req Request) Response {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := r.Capturer.Capture(ctx, req.URL)
	if err == nil {
		return Response{ID: req.ID, Type: "result", Success: true, Result: result}
	}

	resp := Response{ID: req.ID, Type: "error", Error: cartex.ErrorMessage(err)}
	switch {
	case cartex.ErrorCode(err) == cartex.EINVALID:
		resp.Code = CodeInvalidURL
	case cartex.ErrorCode(err) == cartex.ETIMEOUT, errors.Is(err, context.DeadlineExceeded):
		resp.Code = CodeTimeout
		resp.Error = fmt.Sprintf("Timeout after %s", timeout)
	default:
		resp.Code = CodeExtractionFailed
		resp.Error = "Failed to capture item"
	}
	r.logger().Warn("capture failed",
		"id", req.ID,
		"url", req.URL,
		"code", resp.Code,
		"err", err,
	)
	return resp
}

func (r *Router) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Router) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
