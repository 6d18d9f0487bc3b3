package authn

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp "ucp_service/internal/lib/api/response"
	"ucp_service/internal/lib/jwt"
	"ucp_service/internal/models"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func errMsg(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body resp.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)

	return body.Errors[0].Msg
}

func TestAuthn(t *testing.T) {
	var gotClaims jwt.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := New(discardLogger(), testSecret)(next)

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Token not found, authorization denied.", errMsg(t, rr))
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, "not-a-token")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid token.", errMsg(t, rr))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwt.NewToken(models.User{ID: 7, Admin: 1}, testSecret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, token)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(7), gotClaims.UserID)
		assert.Equal(t, 1, gotClaims.Admin)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	chain := New(discardLogger(), testSecret)(RequireAdmin(next))

	t.Run("regular account rejected", func(t *testing.T) {
		token, err := jwt.NewToken(models.User{ID: 7, Admin: 0}, testSecret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, token)

		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "401 Not Authorized.", errMsg(t, rr))
	})

	t.Run("admin passes", func(t *testing.T) {
		token, err := jwt.NewToken(models.User{ID: 8, Admin: 2}, testSecret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, token)

		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
