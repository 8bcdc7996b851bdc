package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const authRealm = "id-node"

// basicAuth protects mutating endpoints. When no credentials are configured
// the endpoints stay open, which is only sane for local development.
func (s *Server) basicAuth() func(http.Handler) http.Handler {
	user := s.cfg.HTTPBasicAuth.User
	password := s.cfg.HTTPBasicAuth.Password
	if user == "" && password == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.BasicAuth(authRealm, map[string]string{user: password})
}
