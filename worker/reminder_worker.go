package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"cohortly/config"
	controller "cohortly/controllers"
	"cohortly/models"
	"cohortly/utils"
)

// ReminderWorker periodically scans for sessions starting within the
// reminder window and notifies enrolled participants once per session.
type ReminderWorker struct {
	DB     *gorm.DB
	Hub    *controller.NotificationHub
	Logger *log.Logger
	Window time.Duration
}

func NewReminderWorker(db *gorm.DB, hub *controller.NotificationHub, logger *log.Logger) *ReminderWorker {
	window := time.Duration(config.AppConfig.ReminderWindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Hour
	}
	return &ReminderWorker{
		DB:     db,
		Hub:    hub,
		Logger: logger,
		Window: window,
	}
}

func (rw *ReminderWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Reminder worker started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Reminder worker shutting down...")
			return
		case <-ticker.C:
			rw.processDueSessions()
		}
	}
}

func (rw *ReminderWorker) processDueSessions() {
	now := time.Now()

	var sessions []models.Session
	err := rw.DB.
		Where("status = ? AND reminder_sent_at IS NULL", "scheduled").
		Where("starts_at BETWEEN ? AND ?", now, now.Add(rw.Window)).
		Find(&sessions).Error
	if err != nil {
		rw.Logger.Printf("Error fetching due sessions: %v", err)
		return
	}

	for _, session := range sessions {
		if err := rw.remindSession(session); err != nil {
			rw.Logger.Printf("Error processing reminders for session %d: %v", session.ID, err)
		}
	}
}

func (rw *ReminderWorker) remindSession(session models.Session) error {
	var participants []models.Participant
	var notifications []models.Notification

	// The guarded update fires first: marking the session, fetching the
	// recipients and writing the notification rows happen in one transaction,
	// so an overlapping run that loses the race does nothing at all.
	err := rw.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Session{}).
			Where("id = ? AND reminder_sent_at IS NULL", session.ID).
			Update("reminder_sent_at", time.Now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Another run got here first
			return nil
		}

		err := tx.
			Joins("JOIN enrollments ON enrollments.participant_id = participants.id").
			Where("enrollments.program_id = ? AND enrollments.status = ?", session.ProgramID, "enrolled").
			Where("participants.is_active = true").
			Find(&participants).Error
		if err != nil {
			return err
		}

		notifications = BuildSessionReminders(session, participants)
		if len(notifications) > 0 {
			return tx.Create(&notifications).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write reminders: %w", err)
	}

	if len(notifications) == 0 {
		return nil
	}

	for _, n := range notifications {
		rw.Hub.Publish(n)
	}

	if config.AppConfig.SMTPHost != "" {
		for _, p := range participants {
			if err := utils.SendSessionReminderEmail(p.Email, p.FullName, session.Title, session.MeetingURL, session.StartsAt); err != nil {
				rw.Logger.Printf("Failed to email reminder to %s: %v", p.Email, err)
			}
		}
	}

	utils.LogEvent("session_reminders_sent", map[string]interface{}{
		"session_id": session.ID,
		"recipients": len(notifications),
	})

	return nil
}

// BuildSessionReminders creates the notification rows for one session.
// Pure: no I/O, deterministic given its inputs.
func BuildSessionReminders(session models.Session, participants []models.Participant) []models.Notification {
	sessionID := session.ID
	programID := session.ProgramID

	notifications := make([]models.Notification, 0, len(participants))
	for _, p := range participants {
		notifications = append(notifications, models.Notification{
			ParticipantID: p.ID,
			SessionID:     &sessionID,
			ProgramID:     &programID,
			Kind:          models.NotificationKindSessionReminder,
			Title:         "Upcoming session: " + session.Title,
			Body:          fmt.Sprintf("%s starts at %s.", session.Title, session.StartsAt.Format("Mon, 2 Jan 15:04")),
		})
	}
	return notifications
}
