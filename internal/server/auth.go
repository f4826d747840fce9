package server

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"successplan/internal/share"
	"successplan/internal/viewmode"
)

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// shareToken reads the token from ?token= or an Authorization bearer header.
func shareToken(req *http.Request) string {
	if t := strings.TrimSpace(req.URL.Query().Get("token")); t != "" {
		return t
	}
	if t, ok := bearerToken(req.Header.Get("Authorization")); ok {
		return t
	}
	return ""
}

// newExternalMiddleware marks every request under <base>/external/ read-only.
// When the issuer has a secret, those requests also need a share token
// issued for the plan id in the path.
func newExternalMiddleware(basePath string, issuer share.Issuer) func(http.Handler) http.Handler {
	prefix := path.Join(basePath, "external") + "/"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, prefix) {
				next.ServeHTTP(w, req)
				return
			}
			planID := strings.SplitN(strings.TrimPrefix(req.URL.Path, prefix), "/", 2)[0]
			if strings.TrimSpace(issuer.Secret) != "" {
				token := shareToken(req)
				if token == "" {
					respondStatusError(w, newAPIError(http.StatusUnauthorized, "unauthorized", "share token required", nil))
					return
				}
				if _, err := issuer.Verify(token, planID); err != nil {
					respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_token", "invalid share token", nil))
					return
				}
			}
			ctx := viewmode.WithReadOnly(req.Context())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func respondStatusError(w http.ResponseWriter, err huma.StatusError) {
	status := http.StatusInternalServerError
	if e, ok := err.(interface{ GetStatus() int }); ok {
		status = e.GetStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}
