package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// Action names a permitted operation. Routes gate on actions, and the single
// capability table below decides which roles hold them.
type Action string

const (
	ActionManageCatalog       Action = "catalog:manage"
	ActionListUsers           Action = "users:list"
	ActionAssignRole          Action = "users:assign_role"
	ActionAssignDeveloperRole Action = "users:assign_developer_role"
	ActionResetUserPassword   Action = "users:reset_password"
	ActionManageTransactions  Action = "transactions:manage"
	ActionManageSettings      Action = "settings:manage"
	ActionUploadImages        Action = "uploads:manage"
)

// capabilities is the one place role permissions are defined. Developer is a
// capability superset of admin by enumeration, not inheritance; notably only
// developers hold ActionAssignDeveloperRole.
var capabilities = map[domain.Role]map[Action]struct{}{
	domain.RoleUser: {},
	domain.RoleAdmin: {
		ActionManageCatalog:      {},
		ActionListUsers:          {},
		ActionAssignRole:         {},
		ActionResetUserPassword:  {},
		ActionManageTransactions: {},
		ActionUploadImages:       {},
	},
	domain.RoleDeveloper: {
		ActionManageCatalog:       {},
		ActionListUsers:           {},
		ActionAssignRole:          {},
		ActionAssignDeveloperRole: {},
		ActionResetUserPassword:   {},
		ActionManageTransactions:  {},
		ActionManageSettings:      {},
		ActionUploadImages:        {},
	},
}

// Can reports whether the role holds the action.
func Can(role domain.Role, action Action) bool {
	actions, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// RequireAction enforces that the authenticated principal holds the action.
// Must run after AuthMiddleware.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Can(principal.User.Role, action) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
