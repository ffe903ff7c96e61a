package models

import "time"

// Ban reasons with special meaning for the approval flow. Any other
// non-empty reason is a manual ban by an admin.
const (
	BanPendingApproval = "PENDING_APPROVAL"
	BanRejected        = "REJECTED"
)

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Email         string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	RoleName      string     `gorm:"column:role;size:50;not null;default:user;index" json:"role"`
	EmailVerified bool       `gorm:"not null;default:false" json:"emailVerified"`
	Image         string     `gorm:"size:500" json:"image,omitempty"`
	Banned        bool       `gorm:"not null;default:false;index" json:"banned"`
	BanReason     string     `gorm:"size:255;index" json:"banReason,omitempty"`
	BanExpires    *time.Time `json:"banExpires,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u *User) IsPending() bool { return u.Banned && u.BanReason == BanPendingApproval }

// BanLapsed reports a ban with an expiry that has passed.
func (u *User) BanLapsed(now time.Time) bool {
	return u.Banned && u.BanExpires != nil && !u.BanExpires.After(now)
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	IPAddress string    `gorm:"size:64" json:"ipAddress"`
	UserAgent string    `gorm:"size:500" json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Setting is one key/value row. Values are strings; callers parse.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
