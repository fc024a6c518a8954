package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	internalerrors "github.com/jrsteele09/go-oauth-client/internal/errors"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle position of a CallbackListener.
type State int

const (
	StateCreated State = iota
	StateListening
	StateResolved
	StateTimedOut
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateListening:
		return "listening"
	case StateResolved:
		return "resolved"
	case StateTimedOut:
		return "timed_out"
	case StateStopped:
		return "stopped"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

const (
	// MaxShutdownGrace bounds how long Stop waits for in-flight requests.
	MaxShutdownGrace = 2 * time.Second

	readHeaderTimeout = 5 * time.Second
	defaultAppName    = "go-oauth-client"
)

// Lifecycle errors returned by CallbackListener.
var (
	ErrAlreadyStarted = internalerrors.ErrAlreadyStarted
	ErrNotListening   = internalerrors.ErrNotListening
	ErrStopped        = internalerrors.ErrStopped
)

// ListenerOption configures a CallbackListener.
type ListenerOption func(*CallbackListener)

func WithLogger(logger zerolog.Logger) ListenerOption {
	return func(l *CallbackListener) {
		l.logger = logger
	}
}

// WithShutdownGrace sets the graceful shutdown window used by Stop. Values
// above MaxShutdownGrace are clamped, values <= 0 force an immediate close.
func WithShutdownGrace(d time.Duration) ListenerOption {
	return func(l *CallbackListener) {
		l.shutdownGrace = min(d, MaxShutdownGrace)
	}
}

// WithAppName sets the application name shown on the success page.
func WithAppName(name string) ListenerOption {
	return func(l *CallbackListener) {
		l.appName = name
	}
}

// WithoutStateCheck disables state validation. The listener then accepts any
// state, including none. Only use this when the authorization server is known
// not to echo state.
func WithoutStateCheck() ListenerOption {
	return func(l *CallbackListener) {
		l.checkState = false
	}
}

// CallbackListener is a one-shot loopback HTTP endpoint that receives the
// authorization server's redirect, validates it and hands the outcome to the
// goroutine blocked in WaitForCallback.
type CallbackListener struct {
	host          string
	port          string
	path          string
	redirect      url.URL
	expectedState string
	checkState    bool
	shutdownGrace time.Duration
	appName       string
	logger        zerolog.Logger

	slot *completionSlot

	mu       sync.Mutex
	state    State
	addr     net.Addr
	srv      *http.Server
	served   chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewCallbackListener prepares a listener for redirectURI. Nothing is bound
// until Start. Port 0 asks the OS for a free port.
func NewCallbackListener(redirectURI, expectedState string, opts ...ListenerOption) (*CallbackListener, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %w", oauthmodel.ErrInvalidURI, err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("%w: redirect uri must use the http scheme, got %q", oauthmodel.ErrInvalidURI, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: redirect uri has no host", oauthmodel.ErrInvalidURI)
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, fmt.Errorf("%w: redirect uri port %q", oauthmodel.ErrInvalidURI, port)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	l := &CallbackListener{
		host:          u.Hostname(),
		port:          port,
		path:          path,
		redirect:      *u,
		expectedState: expectedState,
		checkState:    true,
		shutdownGrace: MaxShutdownGrace,
		appName:       defaultAppName,
		logger:        log.Logger,
		slot:          newCompletionSlot(),
		state:         StateCreated,
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.checkState && expectedState == "" {
		return nil, &oauthmodel.ConfigurationError{
			Reason: "callback listener requires an expected state (use WithoutStateCheck to opt out)",
		}
	}
	return l, nil
}

// Start binds the redirect address and begins serving on a background
// goroutine. It may be called once, from the Created state.
func (l *CallbackListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateCreated:
	case StateStopped:
		return ErrStopped
	default:
		return ErrAlreadyStarted
	}

	pages, err := newCallbackPages(l.appName)
	if err != nil {
		return internalerrors.Wrapf(err, "parse callback templates")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(l.host, l.port))
	if err != nil {
		return internalerrors.Wrapf(err, "bind callback listener on %s", net.JoinHostPort(l.host, l.port))
	}
	l.addr = ln.Addr()
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		l.port = strconv.Itoa(tcp.Port)
	}

	handler := &CallbackHandler{
		expectedState: l.expectedState,
		checkState:    l.checkState,
		slot:          l.slot,
		pages:         pages,
		logger:        l.logger,
	}

	l.srv = &http.Server{
		Handler:           l.routes(handler),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	l.served = make(chan struct{})
	l.state = StateListening

	go func(srv *http.Server, served chan struct{}) {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Err(err).Msg("Callback listener stopped unexpectedly")
		}
	}(l.srv, l.served)

	l.logger.Info().
		Str("addr", l.addr.String()).
		Str("path", l.path).
		Msg("Callback listener started")
	return nil
}

func (l *CallbackListener) routes(handler http.Handler) http.Handler {
	callback := ChainMiddleware(handler.ServeHTTP,
		RecoverMiddleware(l.logger),
		LoggingMiddleware(l.logger),
		SecurityHeadersMiddleware,
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != l.path {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		callback(w, r)
	})
}

// WaitForCallback blocks until the redirect has been handled, timeout elapses
// or ctx is done. A timeout moves the listener to TimedOut and returns
// oauthmodel.ErrCallbackTimeout; the listener keeps its socket until Stop.
// Cancelling ctx returns ctx.Err() and leaves the state unchanged.
func (l *CallbackListener) WaitForCallback(ctx context.Context, timeout time.Duration) (oauthmodel.CallbackOutcome, error) {
	l.mu.Lock()
	switch l.state {
	case StateCreated:
		l.mu.Unlock()
		return oauthmodel.CallbackOutcome{}, ErrNotListening
	case StateStopped:
		l.mu.Unlock()
		return oauthmodel.CallbackOutcome{}, ErrStopped
	}
	l.mu.Unlock()

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-l.slot.done:
		l.transition(StateResolved)
		return l.slot.outcome, nil
	case <-timeoutC:
		// The handler may have won the race with the timer.
		if l.slot.resolved() {
			l.transition(StateResolved)
			return l.slot.outcome, nil
		}
		l.transition(StateTimedOut)
		return oauthmodel.CallbackOutcome{}, fmt.Errorf("%w after %s", oauthmodel.ErrCallbackTimeout, timeout)
	case <-ctx.Done():
		return oauthmodel.CallbackOutcome{}, ctx.Err()
	case <-l.stopped:
		if l.slot.resolved() {
			return l.slot.outcome, nil
		}
		return oauthmodel.CallbackOutcome{}, ErrStopped
	}
}

// transition moves to next unless Stop has already run.
func (l *CallbackListener) transition(next State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.stopped:
	default:
		l.state = next
	}
}

// Stop shuts the listener down. It is idempotent, safe to call before Start
// and from any goroutine, and returns once the serve goroutine has exited.
func (l *CallbackListener) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		srv, served := l.srv, l.served
		if l.state == StateCreated || l.state == StateListening {
			l.state = StateStopped
		}
		close(l.stopped)
		l.mu.Unlock()

		if srv == nil {
			return
		}

		if l.shutdownGrace > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), l.shutdownGrace)
			err := srv.Shutdown(ctx)
			cancel()
			if err != nil {
				l.logger.Warn().Err(err).Msg("Callback listener graceful shutdown timed out, forcing close")
				_ = srv.Close()
			}
		} else {
			_ = srv.Close()
		}
		<-served
		l.logger.Debug().Msg("Callback listener stopped")
	})
}

// State returns the current lifecycle state.
func (l *CallbackListener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Addr returns the bound address, or nil before Start.
func (l *CallbackListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// RedirectURI returns the configured redirect URI. When it asked for port 0,
// the port bound by Start is filled in.
func (l *CallbackListener) RedirectURI() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.redirect
	if u.Port() == "0" {
		u.Host = net.JoinHostPort(l.host, l.port)
	}
	return u.String()
}
