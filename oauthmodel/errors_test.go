package oauthmodel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestConfigurationError(t *testing.T) {
	err := &oauthmodel.ConfigurationError{Grant: "refresh_token", Missing: []string{"client_id", "refresh_token"}}
	require.Equal(t, "invalid oauth configuration for refresh_token: missing required parameters (client_id, refresh_token)", err.Error())
	require.ErrorIs(t, fmt.Errorf("wrapped: %w", err), oauthmodel.ErrConfiguration)
	require.False(t, errors.Is(err, oauthmodel.ErrProtocol))
}

func TestProtocolError(t *testing.T) {
	err := &oauthmodel.ProtocolError{Code: "invalid_grant", Description: "expired", StatusCode: 400}
	require.Equal(t, "oauth error (status 400): invalid_grant - expired", err.Error())
	require.ErrorIs(t, err, oauthmodel.ErrProtocol)

	callbackErr := &oauthmodel.ProtocolError{Code: "access_denied"}
	require.Equal(t, "oauth error: access_denied", callbackErr.Error())
}

func TestAuthorizationErrorWrapsProtocolError(t *testing.T) {
	err := oauthmodel.NewFailureOutcome("access_denied", "user denied").Err()
	require.ErrorIs(t, err, oauthmodel.ErrAuthorization)
	require.ErrorIs(t, err, oauthmodel.ErrProtocol)

	var protocolErr *oauthmodel.ProtocolError
	require.True(t, errors.As(err, &protocolErr))
	require.Equal(t, "access_denied", protocolErr.Code)
	require.Equal(t, "user denied", protocolErr.Description)
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &oauthmodel.ConnectionError{Op: "send request", Err: cause}
	require.ErrorIs(t, err, oauthmodel.ErrConnection)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "send request")
}

func TestCallbackOutcome(t *testing.T) {
	ok := oauthmodel.NewSuccessOutcome("abc", "S")
	require.True(t, ok.IsSuccess())
	require.Equal(t, "abc", ok.Code())
	require.Equal(t, "S", ok.State())
	require.NoError(t, ok.Err())

	failed := oauthmodel.NewFailureOutcome(oauthmodel.ErrorCodeInvalidState, "State parameter mismatch")
	require.False(t, failed.IsSuccess())
	require.Equal(t, "error: invalid_state, description: State parameter mismatch", failed.ErrorText())
}
