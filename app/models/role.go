package models

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PermissionSet is a role's permission bag, stored as a JSON object.
type PermissionSet map[string]bool

func (p PermissionSet) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(p))
	return string(b), err
}

func (p *PermissionSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = PermissionSet{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("models: unsupported permission set column type")
	}
	out := PermissionSet{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*p = out
	return nil
}

type Role struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string        `gorm:"size:255" json:"description"`
	Permissions PermissionSet `gorm:"type:text" json:"permissions"`
	IsSystem    bool          `gorm:"not null;default:false" json:"isSystem"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// IsSystemName reports whether name is one of the reserved roles.
func IsSystemName(name string) bool {
	return name == RoleAdmin || name == RoleUser
}
