package middleware

import (
	"log/slog"
	"net/http"

	"github.com/servicehub/admin-backend/internal"
)

// CapabilityChecker answers whether a caller may perform one capability on
// one module. Satisfied by the permission resolver.
type CapabilityChecker interface {
	Resolve(identity *internal.Identity, moduleName string, capabilityName string) (bool, error)
}

// CapabilityGate guards a route subtree with a module/capability check.
// Requests without an authenticated identity are rejected outright.
func CapabilityGate(checker CapabilityChecker, moduleName, capabilityName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := internal.IdentityFromContext(r.Context())
			if !ok || identity == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := checker.Resolve(identity, moduleName, capabilityName)
			if err != nil {
				slog.Error("capability check failed",
					"user_id", identity.UserID,
					"module", moduleName,
					"capability", capabilityName,
					"error", err)
				http.Error(w, "Forbidden: permission check failed", http.StatusForbidden)
				return
			}

			if !allowed {
				slog.Warn("access denied",
					"user_id", identity.UserID,
					"role", identity.RoleName,
					"module", moduleName,
					"capability", capabilityName)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
