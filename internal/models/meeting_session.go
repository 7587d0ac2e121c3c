package models

import (
	"time"

	"gorm.io/gorm"
)

// MeetingSession spans consecutive ticks with the same meeting app in focus
type MeetingSession struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SessionID  string         `gorm:"not null;uniqueIndex" json:"session_id"`
	AppName    string         `gorm:"not null;index" json:"app_name"`
	StartedAt  time.Time      `gorm:"not null;index" json:"started_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	Duration   int64          `gorm:"not null;default:0" json:"duration"` // Duration in seconds
	Dispatches int            `gorm:"not null;default:0" json:"dispatches"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Active reports whether the session has not ended yet
func (s *MeetingSession) Active() bool {
	return s.EndedAt == nil
}
