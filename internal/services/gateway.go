package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ferntree/marquee/internal/shared"
	"golang.org/x/time/rate"
)

// Session is the gateway's view of the session store: a transient read of
// the credential per call, and the invalidation hook for a rejected one.
// *session.Store satisfies this.
type Session interface {
	Token() string
	Logout()
}

// Gateway is the single choke point through which every protected call to
// the catalog service passes. It attaches the bearer credential, throttles
// outbound requests, and classifies each outcome into exactly one bucket:
// success, unauthorized (session cleared) or remote failure (session kept).
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	limiter    *rate.Limiter
	logger     *log.Logger
}

// GatewayOpts contains configuration options for creating a Gateway.
type GatewayOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    Session
	Limiter    *rate.Limiter
	Logger     *log.Logger
}

// NewGateway creates a Gateway with the provided options, filling defaults
// for anything unset.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:3000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Gateway{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
	}
}

// Do issues a single protected request and decodes a 2xx JSON body into
// result (when non-nil).
//
// Classification is total:
//   - 2xx: success, payload returned to the caller.
//   - 401, or no token held before the attempt: the session store is logged
//     out and [shared.ErrUnauthorized] is returned. An absent token never
//     reaches the network.
//   - anything else, including transport errors: [shared.ErrRemoteFailure]
//     with a descriptive cause; the session is preserved.
//
// Each call is attempted exactly once; callers may re-invoke on a remote
// failure.
func (g *Gateway) Do(ctx context.Context, method, path string, body, result any) error {
	token := g.session.Token()
	if token == "" {
		g.session.Logout()
		return fmt.Errorf("%w: no active session", shared.ErrUnauthorized)
	}

	status, err := g.send(ctx, method, path, token, body, result)
	if status == http.StatusUnauthorized {
		// explicit 401 wins over any transport-level wrapping
		g.session.Logout()
		return fmt.Errorf("%w: credential rejected by %s %s", shared.ErrUnauthorized, method, path)
	}
	return classifyRemote(status, err)
}

// DoWithToken issues a single request authenticated with an explicit token
// instead of the session's. Used during startup rehydration, before any
// session exists; a 401 maps to [shared.ErrUnauthorized] without touching
// the store.
func (g *Gateway) DoWithToken(ctx context.Context, method, path, token string, body, result any) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrUnauthorized)
	}

	status, err := g.send(ctx, method, path, token, body, result)
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: credential rejected by %s %s", shared.ErrUnauthorized, method, path)
	}
	return classifyRemote(status, err)
}

// DoPublic issues a single unauthenticated request. Only the authenticate
// and registration endpoints are callable this way; a 401 here means bad
// credentials, not an expired session.
func (g *Gateway) DoPublic(ctx context.Context, method, path string, body, result any) error {
	status, err := g.send(ctx, method, path, "", body, result)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, status)
	}
	return classifyRemote(status, err)
}

func classifyRemote(status int, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("%w: %v", shared.ErrRemoteFailure, err)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrRemoteFailure, status)
	default:
		return nil
	}
}

// send performs the request exactly once and reports the raw status code.
// A zero status means no response was received. Decode problems on a 2xx
// surface through err with the status preserved.
func (g *Gateway) send(ctx context.Context, method, path, token string, body, result any) (int, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("request throttled: %v", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := shared.GenerateID()
	g.logger.Debug("catalog request", "id", reqID, "method", method, "path", path)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	g.logger.Debug("catalog response", "id", reqID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(snippet) > 0 {
			return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		}
		return resp.StatusCode, nil
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return resp.StatusCode, nil
}
