package server_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/jrsteele09/go-oauth-client/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testRedirectURI = "http://127.0.0.1:0/callback"
	testState       = "expected-state-value"
)

func newStartedListener(t *testing.T, opts ...server.ListenerOption) *server.CallbackListener {
	t.Helper()
	opts = append([]server.ListenerOption{server.WithLogger(zerolog.Nop())}, opts...)
	l, err := server.NewCallbackListener(testRedirectURI, testState, opts...)
	require.NoError(t, err)
	require.NoError(t, l.Start())
	t.Cleanup(l.Stop)
	return l
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewCallbackListener_Validation(t *testing.T) {
	tests := []struct {
		name        string
		redirectURI string
		state       string
		opts        []server.ListenerOption
		wantErr     error
	}{
		{name: "https scheme", redirectURI: "https://127.0.0.1:8080/cb", state: testState, wantErr: oauthmodel.ErrInvalidURI},
		{name: "no host", redirectURI: "http:///cb", state: testState, wantErr: oauthmodel.ErrInvalidURI},
		{name: "bad port", redirectURI: "http://127.0.0.1:99999/cb", state: testState, wantErr: oauthmodel.ErrInvalidURI},
		{name: "blank state", redirectURI: testRedirectURI, state: "", wantErr: oauthmodel.ErrConfiguration},
		{name: "blank state with opt out", redirectURI: testRedirectURI, state: "", opts: []server.ListenerOption{server.WithoutStateCheck()}},
		{name: "valid", redirectURI: testRedirectURI, state: testState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := server.NewCallbackListener(tt.redirectURI, tt.state, tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, l)
				return
			}
			require.NoError(t, err)
			require.Equal(t, server.StateCreated, l.State())
		})
	}
}

func TestCallbackListener_EphemeralPortResolvesRedirectURI(t *testing.T) {
	l := newStartedListener(t)

	require.Equal(t, server.StateListening, l.State())
	require.NotNil(t, l.Addr())
	require.NotContains(t, l.RedirectURI(), ":0/")
	require.True(t, strings.HasSuffix(l.RedirectURI(), "/callback"))
}

func TestCallbackListener_SuccessfulCallback(t *testing.T) {
	l := newStartedListener(t, server.WithAppName("test-app"))

	status, body := get(t, l.RedirectURI()+"?code=abc&state="+testState)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "test-app")

	outcome, err := l.WaitForCallback(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, outcome.IsSuccess())
	require.Equal(t, "abc", outcome.Code())
	require.Equal(t, testState, outcome.State())
	require.Equal(t, server.StateResolved, l.State())
}

func TestCallbackListener_AtMostOnceResolution(t *testing.T) {
	l := newStartedListener(t)

	status, _ := get(t, l.RedirectURI()+"?code=first&state="+testState)
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, l.RedirectURI()+"?code=second&state="+testState)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "already")

	outcome, err := l.WaitForCallback(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, "first", outcome.Code())

	// Reading again returns the same outcome.
	again, err := l.WaitForCallback(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, outcome, again)
}

func TestCallbackListener_ConcurrentCallbacksResolveOnce(t *testing.T) {
	l := newStartedListener(t)

	const requests = 8
	statuses := make(chan int, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(l.RedirectURI() + "?code=abc&state=" + testState)
			if err != nil {
				return
			}
			_ = resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	ok := 0
	for s := range statuses {
		if s == http.StatusOK {
			ok++
		}
	}
	require.Equal(t, 1, ok)
}

func TestCallbackListener_IgnoresOtherPathsAndMethods(t *testing.T) {
	l := newStartedListener(t)
	base := strings.TrimSuffix(l.RedirectURI(), "/callback")

	status, _ := get(t, base+"/favicon.ico")
	require.Equal(t, http.StatusNotFound, status)

	resp, err := http.Post(l.RedirectURI()+"?code=abc&state="+testState, "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	status, _ = get(t, l.RedirectURI()+"?code=abc&state="+testState)
	require.Equal(t, http.StatusOK, status)

	outcome, err := l.WaitForCallback(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, "abc", outcome.Code())
}

func TestCallbackListener_TimeoutLeavesListenerStoppable(t *testing.T) {
	l := newStartedListener(t)

	_, err := l.WaitForCallback(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, oauthmodel.ErrCallbackTimeout)
	require.Equal(t, server.StateTimedOut, l.State())

	// No self-stop: the socket is still bound.
	status, _ := get(t, l.RedirectURI()+"?code=late&state="+testState)
	require.Equal(t, http.StatusOK, status)

	l.Stop()
	l.Stop()
	require.Equal(t, server.StateTimedOut, l.State())

	_, err = http.Get(l.RedirectURI())
	require.Error(t, err)
}

func TestCallbackListener_ContextCancellation(t *testing.T) {
	l := newStartedListener(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.WaitForCallback(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, server.StateListening, l.State())
}

func TestCallbackListener_StopUnblocksWaiter(t *testing.T) {
	l := newStartedListener(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := l.WaitForCallback(context.Background(), time.Minute)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	l.Stop()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, server.ErrStopped)
	case <-time.After(3 * time.Second):
		t.Fatal("WaitForCallback did not return after Stop")
	}
	require.Equal(t, server.StateStopped, l.State())
}

func TestCallbackListener_StopBeforeStart(t *testing.T) {
	l, err := server.NewCallbackListener(testRedirectURI, testState, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	l.Stop()
	l.Stop()
	require.Equal(t, server.StateStopped, l.State())
	require.ErrorIs(t, l.Start(), server.ErrStopped)

	_, err = l.WaitForCallback(context.Background(), time.Second)
	require.ErrorIs(t, err, server.ErrStopped)
}

func TestCallbackListener_LifecycleErrors(t *testing.T) {
	l, err := server.NewCallbackListener(testRedirectURI, testState, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = l.WaitForCallback(context.Background(), time.Second)
	require.ErrorIs(t, err, server.ErrNotListening)

	require.NoError(t, l.Start())
	defer l.Stop()
	require.ErrorIs(t, l.Start(), server.ErrAlreadyStarted)
}

func TestCallbackListener_PortInUse(t *testing.T) {
	first := newStartedListener(t)

	second, err := server.NewCallbackListener(first.RedirectURI(), testState, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	err = second.Start()
	require.Error(t, err)
	require.False(t, errors.Is(err, server.ErrAlreadyStarted))
	second.Stop()
}

func TestState_String(t *testing.T) {
	require.Equal(t, "created", server.StateCreated.String())
	require.Equal(t, "listening", server.StateListening.String())
	require.Equal(t, "resolved", server.StateResolved.String())
	require.Equal(t, "timed_out", server.StateTimedOut.String())
	require.Equal(t, "stopped", server.StateStopped.String())
	require.Equal(t, "unknown(42)", server.State(42).String())
}
