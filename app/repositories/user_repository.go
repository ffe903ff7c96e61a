package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type UserRepository struct {
	Repo[models.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Repo: NewRepo[models.User](db)}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindBy(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Status string // pending | banned | active
	Search string
}

func (r *UserRepository) List(ctx context.Context, f UserFilter, page orm.PageRequest) ([]models.User, orm.Pagination, error) {
	q := r.DB(ctx).Model(&models.User{})
	switch f.Status {
	case "pending":
		q = q.Where("banned = ? AND ban_reason = ?", true, models.BanPendingApproval)
	case "banned":
		q = q.Where("banned = ? AND ban_reason <> ?", true, models.BanPendingApproval)
	case "active":
		q = q.Where("banned = ?", false)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := orm.Like(strings.ToLower(s))
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var users []models.User
	p, err := orm.Paginate(q.Order("id desc"), page, &users)
	return users, p, err
}

func (r *UserRepository) CountPending(ctx context.Context) (int64, error) {
	return r.Count(ctx, "banned = ? AND ban_reason = ?", true, models.BanPendingApproval)
}

// TransitionPending applies updates only while the user is still pending
// approval, and reports whether a row changed.
func (r *UserRepository) TransitionPending(ctx context.Context, id uint, updates map[string]any) (bool, error) {
	res := r.DB(ctx).Model(&models.User{}).
		Where("id = ? AND banned = ? AND ban_reason = ?", id, true, models.BanPendingApproval).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *UserRepository) UpdateFields(ctx context.Context, id uint, updates map[string]any) error {
	return r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *UserRepository) CountWithRole(ctx context.Context, role string) (int64, error) {
	return r.Count(ctx, "role = ?", role)
}

// Remove deletes the user with their sessions.
func (r *UserRepository) Remove(ctx context.Context, id uint) error {
	return orm.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindLive loads the session when it exists and has not expired.
func (r *SessionRepository) FindLive(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	var s models.Session
	err := r.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, now).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *SessionRepository) DeleteForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// PruneExpired deletes sessions past their expiry and returns how many.
func (r *SessionRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
