package models

import "time"

// StorageProvider is a configured backend. Config holds the JSON of
// storage.ProviderConfig with the S3 secret encrypted.
type StorageProvider struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Driver    string    `gorm:"size:20;not null" json:"driver"`
	Config    string    `gorm:"type:text;not null" json:"-"`
	Active    bool      `gorm:"not null;default:false;index" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FileRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Key          string    `gorm:"uniqueIndex;size:191;not null" json:"key"`
	OriginalName string    `gorm:"size:255" json:"originalName"`
	MimeType     string    `gorm:"size:127" json:"mimeType"`
	Size         int64     `gorm:"not null" json:"size"`
	ProviderID   uint      `gorm:"not null;index" json:"providerId"`
	UploadedByID uint      `gorm:"not null;index" json:"uploadedById"`
	URL          string    `gorm:"size:1000" json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

type EmailTemplate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Subject     string    `gorm:"size:255;not null" json:"subject"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EmailFragment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

type EmailLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	To           string    `gorm:"column:recipient;size:255;not null;index" json:"to"`
	TemplateName string    `gorm:"size:120;index" json:"templateName"`
	Subject      string    `gorm:"size:255" json:"subject"`
	Status       string    `gorm:"size:10;not null;index" json:"status"`
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}
