package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
)

func TestSignUpOpenIssuesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Pat", Email: " Pat@Example.com ", Password: "password1"}, ClientMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.RoleName)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.Permissions[models.PermFilesUpload])
	assert.False(t, res.Permissions[models.PermUsersManage])

	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)
	p, err := f.svc.Auth.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.UserID)

	_, err = f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Pat", Email: "pat@example.com", Password: "password1"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignUpGatedStoresPendingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Settings.SetRequireApproval(ctx, true))

	res, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Sam", Email: "sam@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.True(t, res.User.IsPending())

	_, err = f.svc.Auth.SignIn(ctx, SignInInput{Email: "sam@example.com", Password: "password1"}, ClientMeta{})
	var banned *BannedError
	require.ErrorAs(t, err, &banned)
	assert.Equal(t, models.BanPendingApproval, banned.Reason)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := f.svc.Users.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	f.bus.Wait()
}

func TestSignUpActiveAgainAfterApprovalTurnedOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Settings.SetRequireApproval(ctx, true))
	gated, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Early", Email: "early@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	assert.True(t, gated.User.IsPending())

	require.NoError(t, f.svc.Settings.SetRequireApproval(ctx, false))
	open, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Late", Email: "late@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, open.Token)
	assert.False(t, open.User.Banned)

	var early models.User
	require.NoError(t, f.db.First(&early, gated.User.ID).Error)
	assert.True(t, early.IsPending(), "turning approval off does not release waiting users")
	f.bus.Wait()
}

func TestConcurrentDuplicateSignUpsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 6
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Twin", Email: "twin@example.com", Password: "password1"}, ClientMeta{})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, wins)
	f.bus.Wait()
}

func TestDuplicateInsertMapsToConflict(t *testing.T) {
	f := newFixture(t)
	f.user(t, "dup", models.RoleUser)

	err := f.db.Create(&models.User{Name: "Again", Email: "dup@example.com", Password: "x", RoleName: models.RoleUser}).Error
	require.Error(t, err)
	assert.ErrorIs(t, duplicateAsConflict(err, "email %s is already registered", "dup@example.com"), ErrConflict)
	boom := errors.New("boom")
	assert.Same(t, boom, duplicateAsConflict(boom, "unused"))
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Jo", Email: "jo@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)

	_, err = f.svc.Auth.SignIn(ctx, SignInInput{Email: "jo@example.com", Password: "wrong-pass"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Auth.SignIn(ctx, SignInInput{Email: "nobody@example.com", Password: "password1"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := f.svc.Auth.SignIn(ctx, SignInInput{Email: "JO@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestSignInLiftsLapsedBan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Lee", Email: "lee@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", res.User.ID).
		Updates(map[string]any{"banned": true, "ban_reason": "spam", "ban_expires": past}).Error)

	again, err := f.svc.Auth.SignIn(ctx, SignInInput{Email: "lee@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	assert.False(t, again.User.Banned)

	var u models.User
	require.NoError(t, f.db.First(&u, res.User.ID).Error)
	assert.False(t, u.Banned)
	assert.Empty(t, u.BanReason)
}

func TestSignOutEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Ash", Email: "ash@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Auth.SignOut(ctx, claims.SessionID()))
	_, err = f.svc.Auth.Resolve(ctx, claims)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminEmailGetsEveryPermission(t *testing.T) {
	config.Set("ADMIN_EMAIL", "owner@example.com")
	t.Cleanup(func() { config.Set("ADMIN_EMAIL", "") })

	f := newFixture(t)
	res, err := f.svc.Auth.SignUp(context.Background(), SignUpInput{Name: "Owner", Email: "Owner@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	for _, p := range models.AllPermissions {
		assert.True(t, res.Permissions[p], p)
	}
}

func TestPruneSessionsDropsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "kim", models.RoleUser)
	require.NoError(t, f.db.Create(&models.Session{ID: "old", UserID: u.UserID, ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, f.db.Create(&models.Session{ID: "live", UserID: u.UserID, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	n, err := f.svc.Auth.PruneSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left []models.Session
	require.NoError(t, f.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].ID)
}

func TestResolveRefusesBannedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Auth.SignUp(ctx, SignUpInput{Name: "Max", Email: "max@example.com", Password: "password1"}, ClientMeta{})
	require.NoError(t, err)
	claims, err := auth.ParseToken(res.Token)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", res.User.ID).
		Updates(map[string]any{"banned": true, "ban_reason": "abuse"}).Error)
	_, err = f.svc.Auth.Resolve(ctx, claims)
	assert.True(t, errors.Is(err, ErrForbidden))
}
