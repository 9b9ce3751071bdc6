// Package auth guards the API with an optional bearer token and an optional
// allowlist of caller emails asserted by an upstream identity proxy.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

// EmailHeader is set by the identity proxy in front of the service.
const EmailHeader = "X-Forwarded-Email"

// MaxListEntries caps each parsed allowlist.
const MaxListEntries = 1000

var listSep = regexp.MustCompile(`[;,\s]+`)

// ParseList splits a comma, semicolon or whitespace separated list,
// lower-casing entries and dropping empty ones.
func ParseList(v string) []string {
	var out []string
	for _, s := range listSep.Split(v, -1) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxListEntries {
			break
		}
	}
	return out
}

// Gate holds the credentials accepted by the API. The zero value lets
// every request through.
type Gate struct {
	token   string
	emails  map[string]struct{}
	domains map[string]struct{}
}

// NewGate builds a gate from a bearer token and the raw email and domain
// allowlists. Empty inputs disable the corresponding check.
func NewGate(token, emails, domains string) *Gate {
	g := &Gate{
		token:   token,
		emails:  make(map[string]struct{}),
		domains: make(map[string]struct{}),
	}
	for _, e := range ParseList(emails) {
		g.emails[e] = struct{}{}
	}
	for _, d := range ParseList(domains) {
		g.domains[d] = struct{}{}
	}
	return g
}

func (g *Gate) hasAllowlist() bool {
	return len(g.emails) > 0 || len(g.domains) > 0
}

// Allowed reports whether email passes the allowlist. With no allowlist
// configured every non-empty email is allowed.
func (g *Gate) Allowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if !g.hasAllowlist() {
		return true
	}
	if _, ok := g.emails[email]; ok {
		return true
	}
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return false
	}
	_, ok := g.domains[domain]
	return ok
}

// Middleware rejects requests that fail the token or allowlist check.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	if g.token == "" && !g.hasAllowlist() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.token != "" {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
				return
			}
			provided := strings.TrimPrefix(auth, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(g.token)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}

		if g.hasAllowlist() {
			email := r.Header.Get(EmailHeader)
			if strings.TrimSpace(email) == "" {
				writeError(w, http.StatusUnauthorized, "missing identity")
				return
			}
			if !g.Allowed(email) {
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
