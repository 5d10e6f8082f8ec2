package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/KDigitalAi/Assessments/internal/models"
)

type contextKey string

const subjectKey contextKey = "subject"

// TokenVerifier returns the subject of a valid bearer token.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth rejects requests without a valid "Authorization: Bearer" token and
// stores the token subject on the request context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			subject, err := verifier.Verify(strings.TrimSpace(raw))
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated subject, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
