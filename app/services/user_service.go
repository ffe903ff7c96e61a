package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type UpdateUserInput struct {
	Name          *string `json:"name" validate:"nullable,min=2,max=255"`
	Role          *string `json:"role" validate:"nullable,min=1,max=50"`
	EmailVerified *bool   `json:"emailVerified"`
}

type BanInput struct {
	Reason    string     `json:"reason" validate:"required,max=255"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type SetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserService struct {
	users    *repositories.UserRepository
	sessions *repositories.SessionRepository
	roles    repositories.Repo[models.Role]
	bus      *event.Bus
	now      func() time.Time
}

func NewUserService(db *gorm.DB, bus *event.Bus) *UserService {
	return &UserService{
		users:    repositories.NewUserRepository(db),
		sessions: repositories.NewSessionRepository(db),
		roles:    repositories.NewRepo[models.Role](db),
		bus:      bus,
		now:      time.Now,
	}
}

func (s *UserService) List(ctx context.Context, f repositories.UserFilter, page orm.PageRequest) ([]models.User, orm.Pagination, error) {
	switch f.Status {
	case "", "pending", "banned", "active":
	default:
		return nil, orm.Pagination{}, invalid("status", "The status must be one of pending, banned, active.")
	}
	return s.users.List(ctx, f, page)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.Find(ctx, id)
	return u, notFound(err, "user")
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil && *in.Role != u.RoleName {
		ok, err := s.roles.Exists(ctx, "name = ?", *in.Role)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("role", "The selected role does not exist.")
		}
		u.RoleName = *in.Role
	}
	if in.EmailVerified != nil {
		u.EmailVerified = *in.EmailVerified
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Ban bans the user and ends their sessions. Admins cannot ban themselves.
func (s *UserService) Ban(ctx context.Context, actorID, id uint, in BanInput) (*models.User, error) {
	if actorID == id {
		return nil, forbiddenf("you cannot ban your own account")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, invalid("expiresAt", "The ban expiry must be in the future.")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Banned = true
	u.BanReason = strings.TrimSpace(in.Reason)
	u.BanExpires = in.ExpiresAt
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteForUser(ctx, id); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user banned", "target_id", id, "reason", u.BanReason)
	return u, nil
}

func (s *UserService) Unban(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Banned, u.BanReason, u.BanExpires = false, "", nil
	if err := s.users.UpdateFields(ctx, id, map[string]any{"banned": false, "ban_reason": "", "ban_expires": nil}); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return forbiddenf("you cannot delete your own account")
	}
	return notFound(s.users.Remove(ctx, id), "user")
}

// SetPassword replaces the password and signs the user out everywhere.
func (s *UserService) SetPassword(ctx context.Context, id uint, in SetPasswordInput) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := s.users.UpdateFields(ctx, id, map[string]any{"password": hash}); err != nil {
		return err
	}
	return s.sessions.DeleteForUser(ctx, id)
}

func (s *UserService) PendingCount(ctx context.Context) (int64, error) {
	return s.users.CountPending(ctx)
}

// Approve lifts a PENDING_APPROVAL ban. Only one decision per user wins;
// later calls get ErrAlreadyDecided.
func (s *UserService) Approve(ctx context.Context, id uint) (*models.User, error) {
	return s.decide(ctx, id, "approved", EventUserApproved, map[string]any{
		"banned": false, "ban_reason": "", "ban_expires": nil,
	})
}

// Reject keeps the account banned with reason REJECTED.
func (s *UserService) Reject(ctx context.Context, id uint) (*models.User, error) {
	return s.decide(ctx, id, "rejected", EventUserRejected, map[string]any{
		"ban_reason": models.BanRejected,
	})
}

func (s *UserService) decide(ctx context.Context, id uint, decision, evt string, updates map[string]any) (*models.User, error) {
	changed, err := s.users.TransitionPending(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if !changed {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.ApprovalDecisions.WithLabelValues(decision).Inc()
	logger.WithCtx(ctx).Info("signup "+decision, "target_id", id)
	if s.bus != nil {
		s.bus.FireAsync(ctx, evt, UserEvent{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	return u, nil
}

// CreateAdmin creates an active admin, or promotes and re-passwords an
// existing account with the same email.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	in := SignUpInput{Name: name, Email: email, Password: password}
	if strings.TrimSpace(in.Name) == "" || !strings.Contains(in.Email, "@") || len(in.Password) < 8 {
		return nil, false, invalid("admin", "Name, a valid email and a password of at least 8 characters are required.")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &models.User{Email: strings.ToLower(strings.TrimSpace(email))}
		created = true
	case err != nil:
		return nil, false, err
	}
	u.Name = strings.TrimSpace(name)
	u.Password = hash
	u.RoleName = models.RoleAdmin
	u.EmailVerified = true
	u.Banned, u.BanReason, u.BanExpires = false, "", nil
	if err := s.users.Save(ctx, u); err != nil {
		return nil, false, err
	}
	return u, created, nil
}
