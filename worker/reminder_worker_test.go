package worker

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	controller "cohortly/controllers"
	"cohortly/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func newTestWorker(gdb *gorm.DB, hub *controller.NotificationHub) *ReminderWorker {
	return &ReminderWorker{
		DB:     gdb,
		Hub:    hub,
		Logger: log.New(io.Discard, "", 0),
		Window: time.Hour,
	}
}

func TestBuildSessionReminders(t *testing.T) {
	startsAt := time.Date(2026, time.September, 1, 15, 0, 0, 0, time.UTC)
	session := models.Session{
		Model:     gorm.Model{ID: 10},
		ProgramID: 3,
		Title:     "Week 2: Funnels",
		StartsAt:  startsAt,
	}
	participants := []models.Participant{
		{Model: gorm.Model{ID: 1}, FullName: "Ada", Email: "ada@example.com"},
		{Model: gorm.Model{ID: 2}, FullName: "Ben", Email: "ben@example.com"},
	}

	notifications := BuildSessionReminders(session, participants)

	require.Len(t, notifications, 2)
	for i, n := range notifications {
		assert.Equal(t, participants[i].ID, n.ParticipantID)
		require.NotNil(t, n.SessionID)
		assert.Equal(t, uint(10), *n.SessionID)
		require.NotNil(t, n.ProgramID)
		assert.Equal(t, uint(3), *n.ProgramID)
		assert.Equal(t, models.NotificationKindSessionReminder, n.Kind)
		assert.Equal(t, "Upcoming session: Week 2: Funnels", n.Title)
		assert.Contains(t, n.Body, "Week 2: Funnels")
		assert.Contains(t, n.Body, "15:00")
	}
}

func TestBuildSessionRemindersEmpty(t *testing.T) {
	session := models.Session{Model: gorm.Model{ID: 1}, ProgramID: 1, Title: "Kickoff"}
	notifications := BuildSessionReminders(session, nil)
	assert.Empty(t, notifications)
}

func TestRemindSessionNotifiesOnce(t *testing.T) {
	gdb, mock := newMockDB(t)
	hub := controller.NewNotificationHub()
	sub := hub.Subscribe(1)
	defer sub.Close()
	rw := newTestWorker(gdb, hub)

	session := models.Session{
		Model:     gorm.Model{ID: 5},
		ProgramID: 2,
		Title:     "Kickoff",
		StartsAt:  time.Now().Add(30 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM "participants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow(1, "Ada", "ada@example.com"))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, rw.remindSession(session))

	require.Len(t, sub.C, 1)
	n := <-sub.C
	assert.Equal(t, uint(1), n.ParticipantID)
	assert.Equal(t, models.NotificationKindSessionReminder, n.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemindSessionLostRace(t *testing.T) {
	gdb, mock := newMockDB(t)
	hub := controller.NewNotificationHub()
	sub := hub.Subscribe(1)
	defer sub.Close()
	rw := newTestWorker(gdb, hub)

	session := models.Session{
		Model:     gorm.Model{ID: 5},
		ProgramID: 2,
		Title:     "Kickoff",
		StartsAt:  time.Now().Add(30 * time.Minute),
	}

	// reminder_sent_at was already set by another run: the guarded update
	// matches nothing, and no fetch, insert, publish or email may follow
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, rw.remindSession(session))

	assert.Len(t, sub.C, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}
