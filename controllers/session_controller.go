package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/models"
	"cohortly/utils"
)

type SessionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSessionController(db *gorm.DB, logger *log.Logger) *SessionController {
	return &SessionController{
		DB:     db,
		Logger: logger,
	}
}

// CreateSession schedules a session inside a program
func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	programID := c.Params("id")

	var input struct {
		Title           string `json:"title" validate:"required,max=200"`
		StartsAt        string `json:"starts_at" validate:"required"`
		DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
		MeetingURL      string `json:"meeting_url" validate:"omitempty,url"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var program models.Program
	if err := sc.DB.First(&program, "id = ?", programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch program", err)
	}

	startsAt, err := time.Parse(time.RFC3339, input.StartsAt)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "starts_at must be RFC3339", err)
	}

	session := models.Session{
		ProgramID:       program.ID,
		Title:           input.Title,
		StartsAt:        startsAt,
		DurationMinutes: input.DurationMinutes,
		MeetingURL:      input.MeetingURL,
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = 60
	}

	tx := sc.DB.Begin()
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create session", err)
	}
	if err := tx.Model(&program).UpdateColumn("session_count", gorm.Expr("session_count + 1")).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update program stats", err)
	}
	tx.Commit()

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(session))
}

// GetSessions lists sessions of a program in start order
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	programID := c.Params("id")

	var sessions []models.Session
	if err := sc.DB.Where("program_id = ?", programID).Order("starts_at").Find(&sessions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sessions", err)
	}

	return c.JSON(utils.SuccessResponse(sessions))
}

// UpdateSession updates session details
func (sc *SessionController) UpdateSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var input struct {
		Title           string  `json:"title" validate:"omitempty,max=200"`
		StartsAt        string  `json:"starts_at"`
		DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
		MeetingURL      *string `json:"meeting_url" validate:"omitempty,url"`
		Status          string  `json:"status" validate:"omitempty,oneof=scheduled completed canceled"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var session models.Session
	if err := sc.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch session", err)
	}

	if input.Title != "" {
		session.Title = input.Title
	}
	if input.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, input.StartsAt)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "starts_at must be RFC3339", err)
		}
		// Rescheduling re-arms the reminder
		session.StartsAt = startsAt
		session.ReminderSentAt = nil
	}
	if input.DurationMinutes != nil {
		session.DurationMinutes = *input.DurationMinutes
	}
	if input.MeetingURL != nil {
		session.MeetingURL = *input.MeetingURL
	}
	if input.Status != "" {
		session.Status = input.Status
	}

	if err := sc.DB.Save(&session).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return c.JSON(utils.SuccessResponse(session))
}

// DeleteSession removes a session from its program
func (sc *SessionController) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var session models.Session
	if err := sc.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch session", err)
	}

	tx := sc.DB.Begin()
	if err := tx.Delete(&session).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete session", err)
	}
	if err := tx.Model(&models.Program{}).Where("id = ?", session.ProgramID).
		UpdateColumn("session_count", gorm.Expr("GREATEST(session_count - 1, 0)")).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update program stats", err)
	}
	tx.Commit()

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Session deleted successfully",
	}))
}

// GetMySessions lists upcoming sessions for the authenticated participant
func (sc *SessionController) GetMySessions(c *fiber.Ctx) error {
	participantID := c.Locals("subjectID").(uint)

	var sessions []models.Session
	err := sc.DB.
		Joins("JOIN enrollments ON enrollments.program_id = sessions.program_id").
		Where("enrollments.participant_id = ? AND enrollments.status = ?", participantID, "enrolled").
		Where("sessions.starts_at > ? AND sessions.status = ?", time.Now(), "scheduled").
		Order("sessions.starts_at").
		Find(&sessions).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sessions", err)
	}

	return c.JSON(utils.SuccessResponse(sessions))
}
