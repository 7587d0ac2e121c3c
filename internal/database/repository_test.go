package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/actionsum/meetnotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "nested", "meetnotes.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db)
}

func TestRepository_Dispatches(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	latest, err := repo.GetLatestDispatch()
	require.NoError(t, err)
	assert.Nil(t, latest)

	old := &models.DispatchEvent{Timestamp: now.Add(-2 * time.Hour), AppName: "Zoom", MatchedEntry: "Zoom", DeepLink: "obsidian://new", Success: true, Attempts: 1, DisplayServer: "x11"}
	recent := &models.DispatchEvent{Timestamp: now.Add(-time.Minute), AppName: "Microsoft Teams", MatchedEntry: "Microsoft Teams", DeepLink: "obsidian://new", Stage: "notify", Attempts: 3, ErrorMsg: "exit status 1", DisplayServer: "x11"}

	require.NoError(t, repo.CreateDispatch(old))
	require.NoError(t, repo.CreateDispatch(recent))
	assert.NotEmpty(t, old.CorrelationID)
	assert.NotEqual(t, old.CorrelationID, recent.CorrelationID)

	events, err := repo.GetDispatchesSince(now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Microsoft Teams", events[0].AppName)
	assert.False(t, events[0].Success)

	latest, err = repo.GetLatestDispatch()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, recent.CorrelationID, latest.CorrelationID)
}

func TestRepository_Sessions(t *testing.T) {
	repo := newTestRepository(t)
	start := time.Now().Add(-30 * time.Minute)

	session := &models.MeetingSession{AppName: "Zoom", StartedAt: start}
	require.NoError(t, repo.StartSession(session))
	assert.NotEmpty(t, session.SessionID)

	require.NoError(t, repo.EndSession(session.SessionID, start.Add(25*time.Minute), 5))

	sessions, err := repo.GetSessionsSince(start.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(25*60), sessions[0].Duration)
	assert.Equal(t, 5, sessions[0].Dispatches)
	assert.False(t, sessions[0].Active())

	assert.Error(t, repo.EndSession("missing", time.Now(), 0))
}

func TestRepository_EndOpenSessions(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.StartSession(&models.MeetingSession{AppName: "Zoom"}))

	n, err := repo.EndOpenSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sessions, err := repo.GetSessionsSince(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].Active())
}

func TestRepository_GetAppSummarySince(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateDispatch(&models.DispatchEvent{
			Timestamp: now.Add(-time.Duration(i) * time.Minute), AppName: "Zoom", MatchedEntry: "Zoom", Success: i != 2,
		}))
	}
	require.NoError(t, repo.CreateDispatch(&models.DispatchEvent{Timestamp: now, AppName: "Slack Huddle", MatchedEntry: "Slack Huddle", Success: true}))

	zoom := &models.MeetingSession{AppName: "Zoom", StartedAt: now.Add(-10 * time.Minute)}
	require.NoError(t, repo.StartSession(zoom))
	require.NoError(t, repo.EndSession(zoom.SessionID, now, 3))

	summaries, err := repo.GetAppSummarySince(now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Zoom", summaries[0].AppName)
	assert.Equal(t, 3, summaries[0].DispatchCount)
	assert.Equal(t, 1, summaries[0].FailedCount)
	assert.Equal(t, 1, summaries[0].SessionCount)
	assert.Equal(t, int64(600), summaries[0].MeetingSeconds)

	assert.Equal(t, "Slack Huddle", summaries[1].AppName)
	assert.Equal(t, 1, summaries[1].DispatchCount)
	assert.Equal(t, 0, summaries[1].SessionCount)
}

func TestRepository_ErrorLogs(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Source: "dispatch", AppName: "Zoom", ErrorMsg: "notify failed"}))

	logs, err := repo.GetErrorsSince(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "dispatch", logs[0].Source)
	assert.Equal(t, "notify failed", logs[0].ErrorMsg)
}

func TestRepository_DeleteOlderThanAndClear(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	require.NoError(t, repo.CreateDispatch(&models.DispatchEvent{Timestamp: now.Add(-48 * time.Hour), AppName: "Zoom"}))
	require.NoError(t, repo.CreateDispatch(&models.DispatchEvent{Timestamp: now, AppName: "Zoom"}))
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: now.Add(-48 * time.Hour), ErrorMsg: "old"}))

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	events, err := repo.GetDispatchesSince(now.Add(-72 * time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.NoError(t, repo.Clear())

	events, err = repo.GetDispatchesSince(now.Add(-72 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}
