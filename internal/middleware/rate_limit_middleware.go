package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DENNISVILL/makipartner/internal/services"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// rateLimitBody is the 429 payload. It keeps its own flat shape rather than
// the standard envelope so clients can rely on the historical format.
type rateLimitBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitMiddleware admits requests under the named scope. The caller key
// prefers the authenticated user ID (when AuthMiddleware already ran) and
// falls back to the client IP.
func RateLimitMiddleware(limiter services.RateLimiterService, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)

			decision, err := limiter.Admit(r.Context(), scope, key)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Rate limiting temporarily unavailable", nil, err,
				)
				return
			}
			if !decision.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(rateLimitBody{
					Error: "Rate limit exceeded",
					Message: fmt.Sprintf("Too many requests. Limit: %d per %d seconds",
						decision.Limit, int(decision.Window.Seconds())),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	return "ip:" + utils.ClientIP(r)
}
