package models

import "time"

type AppSummary struct {
	AppName        string  `json:"app_name"`
	DispatchCount  int     `json:"dispatch_count"`
	FailedCount    int     `json:"failed_count"`
	SessionCount   int     `json:"session_count"`
	MeetingSeconds int64   `json:"meeting_seconds"`
	MeetingMinutes float64 `json:"meeting_minutes"`
	MeetingHours   float64 `json:"meeting_hours"`
	Percentage     float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period          ReportPeriod `json:"period"`
	Apps            []AppSummary `json:"apps"`
	TotalDispatches int          `json:"total_dispatches"`
	TotalFailures   int          `json:"total_failures"`
	TotalSessions   int          `json:"total_sessions"`
	MeetingSeconds  int64        `json:"meeting_seconds"`
	MeetingMinutes  float64      `json:"meeting_minutes"`
	MeetingHours    float64      `json:"meeting_hours"`
	GeneratedAt     time.Time    `json:"generated_at"`
}
