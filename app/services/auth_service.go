package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
)

type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientMeta is recorded on the session row.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// SessionResult is what sign-up and sign-in hand back to the client.
type SessionResult struct {
	User        *models.User
	Token       string
	ExpiresAt   time.Time
	Permissions map[string]bool
}

type AuthService struct {
	users    *repositories.UserRepository
	sessions *repositories.SessionRepository
	roles    repositories.Repo[models.Role]
	settings *SettingService
	bus      *event.Bus
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, settings *SettingService, bus *event.Bus) *AuthService {
	return &AuthService{
		users:    repositories.NewUserRepository(db),
		sessions: repositories.NewSessionRepository(db),
		roles:    repositories.NewRepo[models.Role](db),
		settings: settings,
		bus:      bus,
		now:      time.Now,
	}
}

// SignUp creates the account. With approval required the user is stored
// banned as PENDING_APPROVAL and no session is returned.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput, meta ClientMeta) (*SessionResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.users.Exists(ctx, "email = ?", email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictf("email %s is already registered", email)
	}

	gated, err := s.settings.RequireApproval(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		RoleName: models.RoleUser,
	}
	if gated {
		user.Banned = true
		user.BanReason = models.BanPendingApproval
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateAsConflict(err, "email %s is already registered", email)
	}

	if gated {
		metrics.Signups.WithLabelValues("pending").Inc()
		logger.WithCtx(ctx).Info("signup awaiting approval", "user_id", user.ID)
		if s.bus != nil {
			s.bus.FireAsync(ctx, EventUserPending, UserEvent{UserID: user.ID, Name: user.Name, Email: user.Email})
		}
		return &SessionResult{User: user}, nil
	}

	metrics.Signups.WithLabelValues("active").Inc()
	return s.issue(ctx, user, meta)
}

// SignIn checks the password and ban state and opens a session. A ban whose
// expiry has passed is lifted here.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput, meta ClientMeta) (*SessionResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// same bcrypt cost as a real miss
		auth.CheckPassword(dummyHash(), in.Password)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, ErrUnauthorized
	}

	if user.Banned {
		if !user.BanLapsed(s.now()) {
			return nil, &BannedError{Reason: user.BanReason}
		}
		if err := s.users.UpdateFields(ctx, user.ID, map[string]any{"banned": false, "ban_reason": "", "ban_expires": nil}); err != nil {
			return nil, err
		}
		user.Banned, user.BanReason, user.BanExpires = false, "", nil
	}

	return s.issue(ctx, user, meta)
}

func (s *AuthService) issue(ctx context.Context, user *models.User, meta ClientMeta) (*SessionResult, error) {
	exp := s.now().Add(config.SessionTTL())
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: exp,
		IPAddress: meta.IP,
		UserAgent: truncate(meta.UserAgent, 500),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	token, err := auth.IssueToken(user.ID, user.RoleName, sess.ID, exp)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissionsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &SessionResult{User: user, Token: token, ExpiresAt: exp, Permissions: perms}, nil
}

func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Resolve implements auth.SessionResolver.
func (s *AuthService) Resolve(ctx context.Context, claims *auth.Claims) (*auth.Principal, error) {
	sess, err := s.sessions.FindLive(ctx, claims.SessionID(), s.now())
	if err != nil {
		return nil, notFound(err, "session")
	}
	if sess.UserID != claims.UserID {
		return nil, ErrUnauthorized
	}
	user, err := s.users.Find(ctx, sess.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.Banned && !user.BanLapsed(s.now()) {
		return nil, &BannedError{Reason: user.BanReason}
	}

	perms, err := s.permissionsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.RoleName,
		SessionID:   sess.ID,
		Permissions: perms,
	}, nil
}

// Me returns the signed-in user with resolved permissions.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, map[string]bool, error) {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, nil, notFound(err, "user")
	}
	perms, err := s.permissionsFor(ctx, user)
	return user, perms, err
}

func (s *AuthService) permissionsFor(ctx context.Context, user *models.User) (map[string]bool, error) {
	var bag models.PermissionSet
	role, err := s.roles.FindBy(ctx, "name = ?", user.RoleName)
	switch {
	case err == nil:
		bag = role.Permissions
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return ResolvePermissions(user.RoleName, bag, user.Email), nil
}

// PruneSessions deletes expired sessions.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.sessions.PruneExpired(ctx, s.now())
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("uniformhub-timing-guard")
	return h
})

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
