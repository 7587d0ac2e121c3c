package database

import (
	"sort"
	"time"

	"github.com/actionsum/meetnotes/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for dispatches, meeting
// sessions and error logs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateDispatch inserts a dispatch event, assigning a correlation id when
// the caller did not
func (r *Repository) CreateDispatch(event *models.DispatchEvent) error {
	if event.CorrelationID == "" {
		event.CorrelationID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert dispatch event")
	}
	return nil
}

// GetDispatchesSince retrieves all dispatch events since a given time, oldest first
func (r *Repository) GetDispatchesSince(since time.Time) ([]*models.DispatchEvent, error) {
	var events []*models.DispatchEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query dispatch events")
	}

	return events, nil
}

// GetLatestDispatch retrieves the most recent dispatch event, or nil when
// nothing has been dispatched yet
func (r *Repository) GetLatestDispatch() (*models.DispatchEvent, error) {
	var event models.DispatchEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest dispatch")
	}
	return &event, nil
}

// StartSession inserts a new meeting session
func (r *Repository) StartSession(session *models.MeetingSession) error {
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	result := r.db.Create(session)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert meeting session")
	}
	return nil
}

// EndSession closes a meeting session and stores its duration
func (r *Repository) EndSession(sessionID string, endedAt time.Time, dispatches int) error {
	var session models.MeetingSession
	result := r.db.Where("session_id = ?", sessionID).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return errors.Errorf("meeting session %s not found", sessionID)
		}
		return errors.Wrap(result.Error, "failed to get meeting session")
	}

	duration := int64(endedAt.Sub(session.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	result = r.db.Model(&session).Updates(map[string]any{
		"ended_at":   endedAt,
		"duration":   duration,
		"dispatches": dispatches,
	})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to end meeting session")
	}
	return nil
}

// EndOpenSessions closes sessions left open by a process that did not exit
// cleanly. Their end is taken to be their start, since the real end is unknown.
func (r *Repository) EndOpenSessions() (int64, error) {
	result := r.db.Model(&models.MeetingSession{}).
		Where("ended_at IS NULL").
		Update("ended_at", gorm.Expr("started_at"))
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to end open sessions")
	}
	return result.RowsAffected, nil
}

// GetSessionsSince retrieves meeting sessions started since a given time, oldest first
func (r *Repository) GetSessionsSince(since time.Time) ([]*models.MeetingSession, error) {
	var sessions []*models.MeetingSession
	result := r.db.Where("started_at >= ?", since).Order("started_at ASC").Find(&sessions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query meeting sessions")
	}

	return sessions, nil
}

type dispatchCountRow struct {
	AppName       string
	DispatchCount int
	FailedCount   int
}

type sessionTotalRow struct {
	AppName        string
	SessionCount   int
	MeetingSeconds int64
}

// GetAppSummarySince returns per-app dispatch counts and meeting time since a
// given time, ordered by meeting time and then by dispatch count
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var dispatchRows []dispatchCountRow
	result := r.db.Model(&models.DispatchEvent{}).
		Select("app_name, COUNT(*) as dispatch_count, SUM(CASE WHEN success THEN 0 ELSE 1 END) as failed_count").
		Where("timestamp >= ?", since).
		Group("app_name").
		Scan(&dispatchRows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query dispatch summary")
	}

	var sessionRows []sessionTotalRow
	result = r.db.Model(&models.MeetingSession{}).
		Select("app_name, COUNT(*) as session_count, SUM(duration) as meeting_seconds").
		Where("started_at >= ?", since).
		Group("app_name").
		Scan(&sessionRows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query session summary")
	}

	byApp := make(map[string]*models.AppSummary)
	get := func(app string) *models.AppSummary {
		if s, ok := byApp[app]; ok {
			return s
		}
		s := &models.AppSummary{AppName: app}
		byApp[app] = s
		return s
	}

	for _, row := range dispatchRows {
		s := get(row.AppName)
		s.DispatchCount = row.DispatchCount
		s.FailedCount = row.FailedCount
	}
	for _, row := range sessionRows {
		s := get(row.AppName)
		s.SessionCount = row.SessionCount
		s.MeetingSeconds = row.MeetingSeconds
	}

	summaries := make([]models.AppSummary, 0, len(byApp))
	for _, s := range byApp {
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.MeetingSeconds != b.MeetingSeconds {
			return a.MeetingSeconds > b.MeetingSeconds
		}
		if a.DispatchCount != b.DispatchCount {
			return a.DispatchCount > b.DispatchCount
		}
		return a.AppName < b.AppName
	})

	return summaries, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if errorLog.Timestamp.IsZero() {
		errorLog.Timestamp = time.Now()
	}

	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorsSince retrieves error logs since a given time, newest first
func (r *Repository) GetErrorsSince(since time.Time) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp DESC").Find(&logs)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}

	return logs, nil
}

// DeleteOlderThan deletes dispatches, sessions and error logs recorded before
// a given time (soft delete) and returns the number of rows removed
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	var total int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("timestamp < ?", before).Delete(&models.DispatchEvent{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete old dispatch events")
		}
		total += result.RowsAffected

		result = tx.Where("started_at < ? AND ended_at IS NOT NULL", before).Delete(&models.MeetingSession{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete old meeting sessions")
		}
		total += result.RowsAffected

		result = tx.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete old error logs")
		}
		total += result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

// Clear removes all recorded data from the database
func (r *Repository) Clear() error {
	for _, table := range []string{"dispatch_events", "meeting_sessions", "error_logs"} {
		result := r.db.Exec("DELETE FROM " + table)
		if result.Error != nil {
			return errors.Wrapf(result.Error, "failed to clear %s", table)
		}
	}
	return nil
}
