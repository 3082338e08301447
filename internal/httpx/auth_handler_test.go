package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notebazaar/internal/auth"
)

var testSecret = []byte("test-secret")

func newAuthRouter(t *testing.T, store *memStore) http.Handler {
	t.Helper()
	r := NewRouter()
	h := &AuthHandler{Users: store, Secret: testSecret, TokenTTL: time.Hour}
	h.Register(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func registerAlice(t *testing.T, h http.Handler) {
	t.Helper()
	w := postJSON(t, h, "/register", map[string]string{
		"full_name": "Alice A", "email": "alice@x.com", "username": "alice", "password": "pw123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterMissingFields(t *testing.T) {
	h := newAuthRouter(t, newMemStore())
	w := postJSON(t, h, "/register", map[string]string{"email": "a@x.com", "username": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterOmitsPassword(t *testing.T) {
	h := newAuthRouter(t, newMemStore())
	w := postJSON(t, h, "/register", map[string]string{
		"full_name": "Alice A", "email": "alice@x.com", "username": "alice",
		"password": "pw123", "program": "CS",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
}

func TestRegisterDuplicateConflict(t *testing.T) {
	store := newMemStore()
	h := newAuthRouter(t, store)
	registerAlice(t, h)

	// Same email, different username.
	w := postJSON(t, h, "/register", map[string]string{
		"full_name": "Alice B", "email": "alice@x.com", "username": "alice2", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Same username, different email.
	w = postJSON(t, h, "/register", map[string]string{
		"full_name": "Alice B", "email": "alice2@x.com", "username": "alice", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginByEmailAndUsername(t *testing.T) {
	store := newMemStore()
	h := newAuthRouter(t, store)
	registerAlice(t, h)

	for _, identifier := range []string{"alice", "alice@x.com"} {
		w := postJSON(t, h, "/login", map[string]string{"identifier": identifier, "password": "pw123"})
		require.Equal(t, http.StatusOK, w.Code, identifier)

		var resp struct {
			User  map[string]any `json:"user"`
			Token string         `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotContains(t, resp.User, "password")

		claims, err := auth.ParseToken(resp.Token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newMemStore()
	h := newAuthRouter(t, store)
	registerAlice(t, h)

	// Wrong password and unknown user answer the same way.
	w := postJSON(t, h, "/login", map[string]string{"identifier": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, h, "/login", map[string]string{"identifier": "nobody", "password": "pw123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, h, "/login", map[string]string{"identifier": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
