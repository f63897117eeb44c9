package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/models"
	"cohortly/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Hub    *NotificationHub
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, hub *NotificationHub, logger *log.Logger) *NotificationController {
	return &NotificationController{
		DB:     db,
		Hub:    hub,
		Logger: logger,
	}
}

// GetMyNotifications returns the authenticated participant's feed
func (nc *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	participantID := c.Locals("subjectID").(uint)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := nc.DB.Model(&models.Notification{}).Where("participant_id = ?", participantID)
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}

	var total int64
	query.Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  notifications,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// MarkNotificationRead marks one notification as read
func (nc *NotificationController) MarkNotificationRead(c *fiber.Ctx) error {
	participantID := c.Locals("subjectID").(uint)
	notificationID := c.Params("id")

	var notification models.Notification
	if err := nc.DB.Where("id = ? AND participant_id = ?", notificationID, participantID).First(&notification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	if notification.ReadAt == nil {
		now := time.Now()
		notification.ReadAt = &now
		if err := nc.DB.Save(&notification).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update notification", err)
		}
	}

	return c.JSON(utils.SuccessResponse(notification))
}

// BroadcastNotification creates a notification for every enrolled
// participant of a program, pushes it to live feeds, and optionally emails
// them. Email sending happens in the background so a slow SMTP host cannot
// hold the request.
func (nc *NotificationController) BroadcastNotification(c *fiber.Ctx) error {
	programID := c.Params("id")

	var input struct {
		Title     string `json:"title" validate:"required,max=200"`
		Body      string `json:"body" validate:"required,max=5000"`
		SendEmail bool   `json:"send_email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var program models.Program
	if err := nc.DB.First(&program, "id = ?", programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch program", err)
	}

	var participants []models.Participant
	err := nc.DB.
		Joins("JOIN enrollments ON enrollments.participant_id = participants.id").
		Where("enrollments.program_id = ? AND enrollments.status = ?", program.ID, "enrolled").
		Where("participants.is_active = true").
		Find(&participants).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participants", err)
	}

	notifications := make([]models.Notification, 0, len(participants))
	for _, p := range participants {
		notifications = append(notifications, models.Notification{
			ParticipantID: p.ID,
			ProgramID:     &program.ID,
			Kind:          models.NotificationKindBroadcast,
			Title:         input.Title,
			Body:          input.Body,
		})
	}

	if len(notifications) > 0 {
		if err := nc.DB.Create(&notifications).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notifications", err)
		}
		for _, n := range notifications {
			nc.Hub.Publish(n)
		}
	}

	if input.SendEmail {
		go func(participants []models.Participant, title, body string) {
			for _, p := range participants {
				if err := utils.SendBroadcastEmail(p.Email, p.FullName, title, body); err != nil {
					nc.Logger.Printf("Failed to email broadcast to %s: %v", p.Email, err)
				}
			}
		}(participants, input.Title, input.Body)
	}

	utils.LogEvent("broadcast_sent", map[string]interface{}{
		"program_id": program.ID,
		"recipients": len(notifications),
		"email":      input.SendEmail,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"message":    "Broadcast sent",
		"recipients": len(notifications),
	}))
}
