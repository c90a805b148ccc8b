package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/commerce-service/internal/domain"
)

func TestCapabilityTable(t *testing.T) {
	allActions := []Action{
		ActionManageCatalog,
		ActionListUsers,
		ActionAssignRole,
		ActionAssignDeveloperRole,
		ActionResetUserPassword,
		ActionManageTransactions,
		ActionManageSettings,
		ActionUploadImages,
	}

	for _, action := range allActions {
		assert.False(t, Can(domain.RoleUser, action), "user must not hold %s", action)
		assert.True(t, Can(domain.RoleDeveloper, action), "developer must hold %s", action)
	}

	// Admin holds everything except the developer-only actions.
	for _, action := range allActions {
		switch action {
		case ActionAssignDeveloperRole, ActionManageSettings:
			assert.False(t, Can(domain.RoleAdmin, action), "admin must not hold %s", action)
		default:
			assert.True(t, Can(domain.RoleAdmin, action), "admin must hold %s", action)
		}
	}
}

func TestCanUnknownRole(t *testing.T) {
	assert.False(t, Can(domain.Role("superuser"), ActionManageCatalog))
}
