package models

import (
	"time"

	"gorm.io/gorm"
)

// DispatchEvent records one notify-and-open attempt for a meeting app
type DispatchEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CorrelationID string         `gorm:"not null;uniqueIndex" json:"correlation_id"`
	SessionID     string         `gorm:"index" json:"session_id,omitempty"`
	Timestamp     time.Time      `gorm:"not null;index" json:"timestamp"`
	AppName       string         `gorm:"not null;index" json:"app_name"`
	MatchedEntry  string         `gorm:"not null" json:"matched_entry"` // allow-list entry that matched
	DeepLink      string         `gorm:"not null" json:"deep_link"`
	Success       bool           `gorm:"not null;default:false" json:"success"`
	Stage         string         `json:"stage,omitempty"` // "notify" or "open" when failed
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	ErrorMsg      string         `json:"error_msg,omitempty"`
	DurationMs    int64          `gorm:"not null;default:0" json:"duration_ms"`
	DisplayServer string         `gorm:"not null" json:"display_server"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
