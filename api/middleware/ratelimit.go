package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agrimandi/agrimandi-backend/api/responses"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	pkgredis "github.com/agrimandi/agrimandi-backend/pkg/redis"
)

// BidRateLimit throttles bid submissions per actor using a fixed window.
// Limiter outages fail open so a redis blip never blocks bidding.
func BidRateLimit(limiter *pkgredis.Client, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			actorID := ActorIDFromContext(r.Context())
			if actorID == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := fmt.Sprintf("bids:%s", actorID)
			allowed, count, err := limiter.FixedWindowAllow(r.Context(), scope, limit, window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "bid rate limiter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "bid rate limit exceeded").WithDetails(map[string]any{
						"limit":          limit,
						"window_seconds": int(window.Seconds()),
						"count":          count,
					}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
