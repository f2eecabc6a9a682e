package middleware

import (
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// CORSPolicy decides which origins get an echoed Access-Control-Allow-Origin.
type CORSPolicy struct {
	// AllowedOrigins is the allow-set, matched exactly.
	AllowedOrigins []string
	// AllowedSubstrings admits any origin containing one of the entries, e.g. "vercel.app".
	AllowedSubstrings []string
	// Permissive answers "*" for every request. Off unless explicitly configured.
	Permissive bool
}

// CORSDecision is the header triple attached to a response. An empty
// AllowOrigin means the header is omitted.
type CORSDecision struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
	Rule         string
}

// Decide evaluates origin against the policy. It is pure and safe for concurrent use.
func (p CORSPolicy) Decide(origin string) CORSDecision {
	d := CORSDecision{AllowMethods: corsAllowMethods, AllowHeaders: corsAllowHeaders, Rule: "rejected"}
	switch {
	case p.Permissive:
		d.AllowOrigin, d.Rule = "*", "permissive"
	case origin == "":
		d.Rule = "no-origin"
	case slices.Contains(p.AllowedOrigins, origin):
		d.AllowOrigin, d.Rule = origin, "allow-set"
	case p.matchesSubstring(origin):
		d.AllowOrigin, d.Rule = origin, "substring"
	}
	return d
}

func (p CORSPolicy) matchesSubstring(origin string) bool {
	for _, s := range p.AllowedSubstrings {
		if s != "" && strings.Contains(origin, s) {
			return true
		}
	}
	return false
}

// CORS attaches the policy's decision to every response, whatever the route.
// It never blocks a request; the browser enforces the outcome.
func CORS(policy CORSPolicy, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			d := policy.Decide(origin)

			h := w.Header()
			if d.AllowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", d.AllowOrigin)
				if d.AllowOrigin != "*" {
					h.Add("Vary", "Origin")
				}
			}
			h.Set("Access-Control-Allow-Methods", d.AllowMethods)
			h.Set("Access-Control-Allow-Headers", d.AllowHeaders)

			fields := []zap.Field{
				zap.String("id", GetRequestID(r.Context())),
				zap.String("origin", origin),
				zap.String("method", r.Method),
				zap.String("rule", d.Rule),
			}
			if d.Rule == "rejected" {
				log.Warn("cors origin not allowed", fields...)
			} else {
				log.Debug("cors decision", fields...)
			}

			next.ServeHTTP(w, r)
		})
	}
}
