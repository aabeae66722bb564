package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

const adminPathPrefix = "/v1/admin/"

// withAuth enforces the optional bearer token on every route except /health,
// and the admin token on admin routes when one is configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.apiToken != "" && !tokenMatches(bearerToken(r), s.apiToken) {
			err := makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, errors.New("missing or invalid bearer token"))
			s.writeErrorReq(w, r, http.StatusUnauthorized, err)
			return
		}

		if strings.HasPrefix(r.URL.Path, adminPathPrefix) && s.adminToken != "" &&
			!tokenMatches(strings.TrimSpace(r.Header.Get("X-Admin-Token")), s.adminToken) {
			err := makeAPIError(http.StatusForbidden, "forbidden", ErrCodeForbidden, errors.New("admin token required"))
			s.writeErrorReq(w, r, http.StatusForbidden, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func tokenMatches(got, want string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
