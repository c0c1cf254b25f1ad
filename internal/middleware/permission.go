package middleware

import (
	"net/http"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
)

// Permission decides whether user may continue. user is nil for anonymous
// requests.
type Permission func(user *model.User) bool

// IsAuthenticated admits any authenticated user.
func IsAuthenticated(user *model.User) bool {
	return user != nil
}

// IsShelter admits users with a shelter profile.
func IsShelter(user *model.User) bool {
	return user != nil && user.Role == model.RoleShelter
}

// IsAdmin admits users with an admin profile and staff users.
func IsAdmin(user *model.User) bool {
	return user != nil && (user.Role == model.RoleAdmin || user.IsStaff)
}

// Require returns middleware that admits a request only when every
// permission passes. An anonymous request behind an authenticator gets a
// 401 not_authenticated; every other denial is a 403 permission_denied.
func Require(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			for _, allowed := range perms {
				if allowed(user) {
					continue
				}
				if user == nil && auth.AuthenticatorConfigured(r.Context()) {
					WriteError(w, http.StatusUnauthorized, ErrorResponse{
						Code:   CodeNotAuthenticated,
						Detail: "Authentication credentials were not provided.",
					})
					return
				}
				WriteError(w, http.StatusForbidden, ErrorResponse{
					Code:   CodePermissionDenied,
					Detail: "You do not have permission to perform this action.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
