package middleware

import (
	"net/http"
	"strings"

	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/pkg/response"

	"github.com/samber/lo"
)

// RequireRole admits requests whose account currently holds one of roleIDs.
// The role in context is the one AuthMiddleware loaded from the account, so a
// patient who applied as a doctor loses patient routes without re-login.
func RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	required := strings.Join(lo.Map(roleIDs, func(id int, _ int) string { return entity.RoleName(id) }), " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}
			if !lo.Contains(roleIDs, roleID) {
				response.Forbidden(w, "This action requires the "+required+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequirePatient guards booking; doctor actions are gated on profile approval
// in the usecases instead.
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDPatient)(next)
}
