package middleware

import (
	"net/http"
	"strings"

	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

// ActorContext lifts the authenticated subject forwarded by the upstream
// gateway into the request context. The API trusts these headers; the gateway
// strips them from external traffic.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if actorID := strings.TrimSpace(r.Header.Get(actorIDHeader)); actorID != "" {
				ctx = WithActorID(ctx, actorID)
				if logg != nil {
					ctx = logg.WithActorID(ctx, actorID)
				}
			}
			if role := strings.TrimSpace(r.Header.Get(actorRoleHeader)); role != "" {
				ctx = WithActorRole(ctx, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
