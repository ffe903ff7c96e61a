package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
)

type RoleInput struct {
	Name        string          `json:"name" validate:"required,slug,max=50"`
	Description string          `json:"description" validate:"max=255"`
	Permissions map[string]bool `json:"permissions"`
}

type RoleUpdateInput struct {
	Name        *string         `json:"name" validate:"nullable,slug,max=50"`
	Description *string         `json:"description" validate:"nullable,max=255"`
	Permissions map[string]bool `json:"permissions"`
}

// RoleWithCount is a role plus how many users hold it.
type RoleWithCount struct {
	models.Role
	UserCount int64 `json:"userCount"`
}

type RoleService struct {
	roles repositories.Repo[models.Role]
	users *repositories.UserRepository
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{
		roles: repositories.NewRepo[models.Role](db),
		users: repositories.NewUserRepository(db),
	}
}

func (s *RoleService) List(ctx context.Context) ([]RoleWithCount, error) {
	roles, err := s.roles.Where(ctx, "name asc", "")
	if err != nil {
		return nil, err
	}
	out := make([]RoleWithCount, 0, len(roles))
	for _, r := range roles {
		n, err := s.users.CountWithRole(ctx, r.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, RoleWithCount{Role: r, UserCount: n})
	}
	return out, nil
}

func (s *RoleService) Get(ctx context.Context, id uint) (*models.Role, error) {
	r, err := s.roles.Find(ctx, id)
	return r, notFound(err, "role")
}

func (s *RoleService) Create(ctx context.Context, in RoleInput) (*models.Role, error) {
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	r := &models.Role{Name: name, Description: in.Description, Permissions: perms}
	if err := s.roles.Create(ctx, r); err != nil {
		return nil, duplicateAsConflict(err, "role %s already exists", name)
	}
	return r, nil
}

// Update edits a role. System roles keep their name; users holding a
// renamed role move with it.
func (s *RoleService) Update(ctx context.Context, id uint, in RoleUpdateInput) (*models.Role, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != r.Name {
		if r.IsSystem {
			return nil, forbiddenf("system role %s cannot be renamed", r.Name)
		}
		if err := s.ensureNameFree(ctx, *in.Name, r.ID); err != nil {
			return nil, err
		}
	}
	if in.Permissions != nil {
		perms, err := normalizePermissions(in.Permissions)
		if err != nil {
			return nil, err
		}
		r.Permissions = perms
	}
	if in.Description != nil {
		r.Description = *in.Description
	}

	oldName := r.Name
	err = s.roles.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Name != nil && *in.Name != oldName {
			r.Name = *in.Name
			if err := tx.Model(&models.User{}).Where("role = ?", oldName).Update("role", r.Name).Error; err != nil {
				return err
			}
		}
		return tx.Save(r).Error
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RoleService) Delete(ctx context.Context, id uint) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.IsSystem || models.IsSystemName(r.Name) {
		return forbiddenf("system role %s cannot be deleted", r.Name)
	}
	n, err := s.users.CountWithRole(ctx, r.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("role %s is assigned to %d users", r.Name, n)
	}
	return s.roles.Delete(ctx, r.ID)
}

func (s *RoleService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	taken, err := s.roles.Exists(ctx, "name = ? AND id <> ?", name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("role %s already exists", name)
	}
	return nil
}

// Seed makes sure the system roles exist. admin holds every key; user may
// upload files. Existing bags are left alone.
func (s *RoleService) Seed(ctx context.Context) (int, error) {
	all := models.PermissionSet{}
	for _, p := range models.AllPermissions {
		all[p] = true
	}
	defaults := []models.Role{
		{Name: models.RoleAdmin, Description: "Full access", Permissions: all, IsSystem: true},
		{Name: models.RoleUser, Description: "Buyers and sellers", Permissions: models.PermissionSet{models.PermFilesUpload: true}, IsSystem: true},
	}

	created := 0
	for i := range defaults {
		existing, err := s.roles.FindBy(ctx, "name = ?", defaults[i].Name)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.roles.Create(ctx, &defaults[i]); err != nil {
				return created, err
			}
			created++
		case err != nil:
			return created, err
		case !existing.IsSystem:
			existing.IsSystem = true
			if err := s.roles.Save(ctx, existing); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}
