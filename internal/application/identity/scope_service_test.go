package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/identity"
)

func createSectionScopedRole(t *testing.T, organizationID uuid.UUID, sectionIDs ...uuid.UUID) *identity.Role {
	t.Helper()
	role, err := identity.NewRole(organizationID, "CONTRIB", "Contributor")
	require.NoError(t, err)
	role.ClearDomainEvents()

	values := make([]string, len(sectionIDs))
	for i, id := range sectionIDs {
		values[i] = id.String()
	}
	ds, err := identity.NewSectionDataScope("datapoint", values)
	require.NoError(t, err)
	require.NoError(t, role.SetDataScope(*ds))
	role.ClearDomainEvents()
	return role
}

func TestSectionScopeService_CanAccessSection(t *testing.T) {
	ctx := context.Background()
	organizationID := uuid.New()
	sectionID := uuid.New()

	t.Run("all scope grants any section", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)
		role := createTestRole(organizationID)
		ds, err := identity.NewDataScope("datapoint", identity.DataScopeAll)
		require.NoError(t, err)
		require.NoError(t, role.SetDataScope(*ds))
		user.RoleIDs = []uuid.UUID{role.ID}

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]*identity.Role{role}, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("sections scope grants only the listed sections", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)
		role := createSectionScopedRole(t, organizationID, sectionID)
		user.RoleIDs = []uuid.UUID{role.ID}

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]*identity.Role{role}, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)
		assert.NoError(t, err)
		assert.True(t, allowed)

		denied, err := service.CanAccessSection(ctx, organizationID, user.ID, uuid.New())
		assert.NoError(t, err)
		assert.False(t, denied)
	})

	t.Run("user without a sections scope is unrestricted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)
		role := createTestRole(organizationID)
		user.RoleIDs = []uuid.UUID{role.ID}

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]*identity.Role{role}, nil)
		roleRepo.On("LoadDataScopes", ctx, role).Return(nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("user with no roles is unrestricted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.True(t, allowed)
		roleRepo.AssertNotCalled(t, "FindByIDs", ctx, user.RoleIDs)
	})

	t.Run("disabled role scopes are ignored", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)
		role := createSectionScopedRole(t, organizationID, uuid.New())
		require.NoError(t, role.Disable())
		role.ClearDomainEvents()
		user.RoleIDs = []uuid.UUID{role.ID}

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]*identity.Role{role}, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("widest grant across roles wins", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(organizationID)
		narrow := createSectionScopedRole(t, organizationID, uuid.New())
		wide := createTestRole(organizationID)
		ds, err := identity.NewDataScope("datapoint", identity.DataScopeAll)
		require.NoError(t, err)
		require.NoError(t, wide.SetDataScope(*ds))
		user.RoleIDs = []uuid.UUID{narrow.ID, wide.ID}

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		roleRepo.On("FindByIDs", ctx, user.RoleIDs).Return([]*identity.Role{narrow, wide}, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("user from another organization is denied", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewSectionScopeService(userRepo, roleRepo, nil)

		user := createTestUser(uuid.New())

		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		allowed, err := service.CanAccessSection(ctx, organizationID, user.ID, sectionID)

		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}
