package queue

import (
	"time"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

// FailedJobRecord is a row in failed_jobs.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey"`
	Name     string    `gorm:"size:191;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null;index"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

func (m *Manager) recordFailure(name string, payload []byte, err error, attempts int) {
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{Name: name, Payload: payload, Err: err, FailedAt: now, Attempts: attempts})
	db := m.db
	m.mu.Unlock()

	if db == nil {
		return
	}
	rec := FailedJobRecord{Name: name, Payload: string(payload), Error: msg, Attempts: attempts, FailedAt: now}
	if dbErr := db.Create(&rec).Error; dbErr != nil {
		logger.Error("queue: persist failed job", "name", name, "error", dbErr)
	}
}
