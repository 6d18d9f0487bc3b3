package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucp_service/internal/auth"
	resp "ucp_service/internal/lib/api/response"
	"ucp_service/internal/lib/api/validation"
)

type fakeAuthenticator struct {
	calls int
	token string
	err   error
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _, _ string) (string, error) {
	f.calls++

	return f.token, f.err
}

func (f *fakeAuthenticator) LoginAdmin(_ context.Context, _, _, _ string) (string, error) {
	f.calls++

	return f.token, f.err
}

func serve(t *testing.T, svc *fakeAuthenticator, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(log, validation.New(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler(rr, req)

	return rr
}

func TestLoginSuccess(t *testing.T) {
	svc := &fakeAuthenticator{token: "jwt-token"}

	rr := serve(t, svc, `{"usermail":"John_Doe","password":"password123"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, svc.calls)

	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "jwt-token", body.Token)
}

func TestLoginValidationShortCircuits(t *testing.T) {
	svc := &fakeAuthenticator{token: "jwt-token"}

	rr := serve(t, svc, `{"usermail":"","password":""}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body resp.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	// One error per violated rule, and the service is never reached.
	assert.Len(t, body.Errors, 2)
	assert.Equal(t, 0, svc.calls)
}

func TestLoginBadJSON(t *testing.T) {
	svc := &fakeAuthenticator{}

	rr := serve(t, svc, `{"usermail":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestLoginDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"unknown user", auth.ErrUserNotFound, "The username or email address that you've entered does not exist."},
		{"wrong password", auth.ErrInvalidCredentials, "The password that you've entered is incorrect."},
		{"not admin", auth.ErrNotAuthorized, "You're not authorized to access this page."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthenticator{err: tc.err}

			rr := serve(t, svc, `{"usermail":"John_Doe","password":"password123"}`)

			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body resp.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.False(t, body.Errors[0].Status)
			assert.Equal(t, tc.msg, body.Errors[0].Msg)
		})
	}
}
