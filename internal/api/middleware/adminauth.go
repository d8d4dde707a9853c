package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/slanglate/slanglate/internal/api/models"
)

// AdminAuth guards the usage reporting endpoints with a shared key carried
// in the X-Admin-Key header or the key query parameter. The comparison is
// constant time.
func AdminAuth(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An unset key disables the endpoints rather than opening
			// them.
			if adminKey == "" {
				writeAdminForbidden(w, r, "admin endpoints are disabled")
				return
			}

			provided := r.Header.Get("X-Admin-Key")
			if provided == "" {
				provided = r.URL.Query().Get("key")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
				writeAdminForbidden(w, r, "invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAdminForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewProblem(models.ProblemTypeUnauthorized, "Forbidden", http.StatusForbidden, traceID)
	problem.Detail = detail
	problem.Instance = r.URL.Path
	problem.Write(w)
}
