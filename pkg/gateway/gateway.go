// Package gateway sends requests to the review API on behalf of the current
// session. It attaches the session's bearer token and forces a sign-out and a
// redirect to the login route when the API rejects the credential.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/abhishek622/foodreview/auth/pkg/session"
	"github.com/abhishek622/foodreview/internal/httputil"
	"github.com/abhishek622/foodreview/pkg/discovery"
	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	tracerID = "gateway"

	// DefaultServiceName is the registry name of the review API.
	DefaultServiceName = "foodreview-api"
	// DefaultLoginRoute is where users are sent after a forced sign-out.
	DefaultLoginRoute = "/login"
)

// Request describes an API call.
type Request struct {
	Method string
	Path   string // escaped, relative to the API root
	Query  url.Values
	Body   any
}

// Sessions is the read/invalidate view of the session the gateway needs.
type Sessions interface {
	Credential(ctx context.Context) (session.Credential, error)
	Invalidate(ctx context.Context, epoch uint64) (bool, error)
}

// Navigator moves the user to another route of the application.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) { f(ctx, route) }

// Gateway defines the session-aware HTTP gateway to the review API.
type Gateway struct {
	registry    discovery.Resolver
	sessions    Sessions
	navigator   Navigator
	serviceName string
	loginRoute  string
	client      *http.Client
	limiter     *rate.Limiter
	scope       tally.Scope
	logger      *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option { return func(g *Gateway) { g.client = c } }
func WithLimiter(l *rate.Limiter) Option   { return func(g *Gateway) { g.limiter = l } }
func WithMetrics(s tally.Scope) Option     { return func(g *Gateway) { g.scope = s } }
func WithLogger(l *zap.Logger) Option      { return func(g *Gateway) { g.logger = l } }
func WithServiceName(n string) Option      { return func(g *Gateway) { g.serviceName = n } }
func WithLoginRoute(r string) Option       { return func(g *Gateway) { g.loginRoute = r } }

// New creates a new gateway.
func New(registry discovery.Resolver, sessions Sessions, navigator Navigator, opts ...Option) *Gateway {
	g := &Gateway{
		registry:    registry,
		sessions:    sessions,
		navigator:   navigator,
		serviceName: DefaultServiceName,
		loginRoute:  DefaultLoginRoute,
		client:      &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Inf, 0),
		scope:       tally.NoopScope,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Do sends req and decodes a successful JSON response into out, which may be nil.
// Any non-2xx response is returned as a *StatusError.
func (g *Gateway) Do(ctx context.Context, req Request, out any) (err error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/Do", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", req.Method), attribute.String("http.path", req.Path))

	scope := g.scope.Tagged(map[string]string{"method": req.Method})
	scope.Counter("requests").Inc(1)
	sw := scope.Timer("latency").Start()
	defer func() {
		sw.Stop()
		if err != nil {
			scope.Counter("failures").Inc(1)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	base, err := httputil.ServiceURL(ctx, g.serviceName, g.registry)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", g.serviceName, err)
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, httputil.JoinPath(base, req.Path, req.Query).String(), body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// The credential is read at send time so a refreshed token is never missed.
	cred, err := g.sessions.Credential(ctx)
	signedIn := err == nil
	switch {
	case signedIn:
		httpReq.Header.Set("Authorization", "Bearer "+cred.Token)
	case errors.Is(err, session.ErrRefreshRejected):
		// The session can never produce a valid token again.
		scope.Counter("auth_failures").Inc(1)
		g.forceLogout(ctx, true, cred)
		return err
	case !errors.Is(err, session.ErrNoSession):
		return err
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Message:    readMessage(resp.Body),
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			scope.Counter("auth_failures").Inc(1)
			g.forceLogout(ctx, signedIn, cred)
		}
		return statusErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// forceLogout signs out the session that sent the rejected request, then
// sends the user to the login route. A failed sign-out is logged and the
// redirect skipped, since the session is still in place.
func (g *Gateway) forceLogout(ctx context.Context, signedIn bool, cred session.Credential) {
	if signedIn {
		cleared, err := g.sessions.Invalidate(context.WithoutCancel(ctx), cred.Epoch)
		if err != nil {
			g.logger.Error("Failed to sign out after auth failure", zap.Error(err))
			return
		}
		if !cleared {
			// Another request already signed this session out.
			return
		}
		g.logger.Info("Session rejected by the API, signed out")
	}
	g.navigator.Navigate(ctx, g.loginRoute)
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
