package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// FailedJobRecord is a row in failed_jobs. The table is created by the
// migrations when the sql store is in use.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// persistFailed records the failure in failed_jobs when a database is
// configured, then in memory.
func (m *Manager) persistFailed(ctx context.Context, env envelope, lastErr error, attempts int) {
	now := time.Now().UTC()

	if m.failedDB != nil {
		msg := ""
		if lastErr != nil {
			msg = lastErr.Error()
		}
		record := FailedJobRecord{
			JobType:  env.Type,
			Payload:  string(env.Payload),
			Error:    msg,
			Attempts: attempts,
			FailedAt: now,
		}
		if err := m.failedDB.WithContext(context.WithoutCancel(ctx)).Create(&record).Error; err != nil {
			logger.Error("queue: persist failed job", "type", env.Type, "error", err)
		}
	}

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: env.Type, Payload: env.Payload, Err: lastErr, FailedAt: now, Attempts: attempts,
	})
	m.mu.Unlock()
}
