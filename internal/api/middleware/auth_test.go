package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveAuth(secret []byte, authorization string) int {
	h := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestAuthRejectionBody(t *testing.T) {
	h := Auth([]byte("s3cret"))(http.NotFoundHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"unauthorized","message":"Unauthorized"}}`, rr.Body.String())
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	assert.Equal(t, http.StatusOK, serveAuth(nil, ""))
}

func TestAuth(t *testing.T) {
	secret := []byte("s3cret")
	valid, err := NewAdminToken(secret, time.Hour)
	require.NoError(t, err)
	expired, err := NewAdminToken(secret, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewAdminToken([]byte("other"), time.Hour)
	require.NoError(t, err)
	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: AdminSubject}).SignedString(secret)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		want   int
	}{
		"valid":          {"Bearer " + valid, http.StatusOK},
		"lowercase":      {"bearer " + valid, http.StatusOK},
		"missing":        {"", http.StatusUnauthorized},
		"not bearer":     {"Basic abc", http.StatusUnauthorized},
		"expired":        {"Bearer " + expired, http.StatusUnauthorized},
		"wrong key":      {"Bearer " + otherKey, http.StatusUnauthorized},
		"wrong subject":  {"Bearer " + notAdmin, http.StatusUnauthorized},
		"no expiry":      {"Bearer " + noExpiry, http.StatusUnauthorized},
		"garbage":        {"Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, serveAuth(secret, tc.header))
		})
	}
}
