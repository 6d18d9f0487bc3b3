package register

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

type fakeRegistrar struct {
	calls int
	token string
	err   error
}

func (f *fakeRegistrar) Register(_ context.Context, _, _, _, _ string) (string, error) {
	f.calls++

	return f.token, f.err
}

func serve(t *testing.T, svc *fakeRegistrar, body string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(log, validation.New(), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/new", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler(rr, req)

	return rr
}

func TestRegisterSuccess(t *testing.T) {
	svc := &fakeRegistrar{token: "jwt-token"}

	rr := serve(t, svc, `{"username":"John_Doe","email":"john@example.com","password":"secret99"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, svc.calls)

	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "jwt-token", body.Token)
}

func TestRegisterValidationShortCircuits(t *testing.T) {
	svc := &fakeRegistrar{token: "jwt-token"}

	rr := serve(t, svc, `{"username":"","email":"","password":""}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body resp.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Len(t, body.Errors, 3)
	assert.Equal(t, 0, svc.calls)
}

func TestRegisterUsernameCharset(t *testing.T) {
	svc := &fakeRegistrar{}

	rr := serve(t, svc, `{"username":"John Doe!","email":"john@example.com","password":"secret99"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body resp.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Only these characters are allowed (a-z, A-Z, 0-9, _underscore, .dot).", body.Errors[0].Msg)
	assert.Equal(t, 0, svc.calls)
}

func TestRegisterDuplicates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"username taken", auth.ErrUserExists, "The username that you've entered is already exist."},
		{"email taken", auth.ErrEmailExists, "The email address that you've entered is already exist."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeRegistrar{err: tc.err}

			rr := serve(t, svc, `{"username":"John_Doe","email":"john@example.com","password":"secret99"}`)

			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body resp.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tc.msg, body.Errors[0].Msg)
		})
	}
}
