package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/formrelay/relay/internal/api/types"
	appErr "github.com/formrelay/relay/pkg/errors"
)

// AdminSubject is the subject claim carried by admin tokens.
const AdminSubject = "admin"

// Auth validates a Bearer JWT signed with hmacSecret and requiring sub=admin.
// An empty secret disables the check.
func Auth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(hmacSecret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				unauthorized(w)
				return
			}
			tokenStr := strings.TrimSpace(ah[len("Bearer "):])
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				return hmacSecret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				unauthorized(w)
				return
			}
			if sub, _ := token.Claims.GetSubject(); sub != AdminSubject {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	err := appErr.New(appErr.CodeUnauthorized, http.StatusText(http.StatusUnauthorized))
	types.WriteJSON(w, appErr.HTTPStatus(err), types.APIResponse{
		Success: false,
		Error:   types.FromAppError(err),
	})
}

// NewAdminToken signs an HS256 admin token valid for ttl.
func NewAdminToken(hmacSecret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   AdminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(hmacSecret)
}
