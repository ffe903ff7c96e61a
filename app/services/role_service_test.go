package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/models"
)

func systemRole(t *testing.T, f *fixture, name string) *models.Role {
	t.Helper()
	var r models.Role
	require.NoError(t, f.db.Where("name = ?", name).First(&r).Error)
	return &r
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.Roles.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	admin := systemRole(t, f, models.RoleAdmin)
	assert.True(t, admin.IsSystem)
	assert.Len(t, admin.Permissions, len(models.AllPermissions))
}

func TestCreateRoleValidatesPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Roles.Create(ctx, RoleInput{Name: "moderator", Permissions: map[string]bool{"users.fly": true}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	r, err := f.svc.Roles.Create(ctx, RoleInput{Name: "moderator", Permissions: map[string]bool{models.PermUsersView: true}})
	require.NoError(t, err)
	assert.True(t, r.Permissions[models.PermUsersView])
	assert.False(t, r.IsSystem)

	_, err = f.svc.Roles.Create(ctx, RoleInput{Name: "moderator"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestConcurrentRoleCreatesConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	errs := make(chan error, 4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Roles.Create(ctx, RoleInput{Name: "volunteer"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestSystemRolesCannotBeRenamedOrDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := systemRole(t, f, models.RoleUser)

	_, err := f.svc.Roles.Update(ctx, user.ID, RoleUpdateInput{Name: ptr("member")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Roles.Delete(ctx, user.ID), ErrForbidden)

	got, err := f.svc.Roles.Update(ctx, user.ID, RoleUpdateInput{Permissions: map[string]bool{models.PermShopsManage: true}})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionSet{models.PermShopsManage: true}, got.Permissions)
}

func TestRenameMovesUsersAndDeleteNeedsNoHolders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.svc.Roles.Create(ctx, RoleInput{Name: "helper", Permissions: map[string]bool{models.PermSchoolsManage: true}})
	require.NoError(t, err)
	p := f.user(t, "hana", "helper")

	_, err = f.svc.Roles.Update(ctx, r.ID, RoleUpdateInput{Name: ptr("volunteer")})
	require.NoError(t, err)

	var u models.User
	require.NoError(t, f.db.First(&u, p.UserID).Error)
	assert.Equal(t, "volunteer", u.RoleName)

	assert.ErrorIs(t, f.svc.Roles.Delete(ctx, r.ID), ErrConflict)
	require.NoError(t, f.db.Model(&u).Update("role", models.RoleUser).Error)
	require.NoError(t, f.svc.Roles.Delete(ctx, r.ID))
	assert.ErrorIs(t, f.svc.Roles.Delete(ctx, r.ID), ErrNotFound)
}

func TestListCountsHolders(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a", models.RoleUser)
	f.user(t, "b", models.RoleUser)

	roles, err := f.svc.Roles.List(context.Background())
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, r := range roles {
		counts[r.Name] = r.UserCount
	}
	assert.EqualValues(t, 2, counts[models.RoleUser])
	assert.EqualValues(t, 0, counts[models.RoleAdmin])
}

func TestResolvePermissionsAdminSentinel(t *testing.T) {
	bag := models.PermissionSet{models.PermFilesUpload: true}
	perms := ResolvePermissions(models.RoleUser, bag, "someone@example.com")
	assert.True(t, perms[models.PermFilesUpload])
	assert.False(t, perms[models.PermRolesManage])

	perms = ResolvePermissions(models.RoleAdmin, nil, "")
	for _, key := range models.AllPermissions {
		assert.True(t, perms[key], key)
	}
}
