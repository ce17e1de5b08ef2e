package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/stretchr/testify/assert"
)

func TestProvisionedRoleIsRoot(t *testing.T) {
	assert.Equal(t, auth.RoleRoot, auth.ProvisionedRole)
	assert.Equal(t, "root", auth.ProvisionedRole.String())
	assert.True(t, auth.ProvisionedRole.IsValid())
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range auth.GetAllRoles() {
		assert.True(t, role.IsValid(), role)
	}

	assert.False(t, auth.UserRole("superuser").IsValid())
	assert.False(t, auth.UserRole("").IsValid())
}
