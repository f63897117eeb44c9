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

type ParticipantController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewParticipantController(db *gorm.DB, logger *log.Logger) *ParticipantController {
	return &ParticipantController{
		DB:     db,
		Logger: logger,
	}
}

// CreateParticipant registers a participant record
func (pc *ParticipantController) CreateParticipant(c *fiber.Ctx) error {
	var input struct {
		FullName  string `json:"full_name" validate:"required,max=200"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"omitempty,max=50"`
		Timezone  string `json:"timezone" validate:"omitempty,max=64"`
		CompanyID *uint  `json:"company_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.Participant
	if err := pc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Participant with this email already exists", nil)
	}

	participant := models.Participant{
		FullName:  input.FullName,
		Email:     input.Email,
		Phone:     input.Phone,
		Timezone:  input.Timezone,
		CompanyID: input.CompanyID,
	}

	if err := pc.DB.Create(&participant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create participant", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(participant))
}

// GetParticipants returns paginated participants
func (pc *ParticipantController) GetParticipants(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	email := c.Query("email")
	programID := c.Query("program_id")

	query := pc.DB.Model(&models.Participant{})

	if email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}
	if programID != "" {
		query = query.Joins("JOIN enrollments ON enrollments.participant_id = participants.id").
			Where("enrollments.program_id = ?", utils.ParseUint(programID))
	}

	var participants []models.Participant
	if err := query.Offset(offset).Limit(limit).Find(&participants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participants", err)
	}

	var total int64
	query.Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  participants,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetParticipant returns a single participant with enrollments
func (pc *ParticipantController) GetParticipant(c *fiber.Ctx) error {
	participantID := c.Params("id")

	var participant models.Participant
	if err := pc.DB.Preload("Enrollments").First(&participant, "id = ?", participantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Participant not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participant", err)
	}

	return c.JSON(utils.SuccessResponse(participant))
}

// UpdateParticipant updates participant details
func (pc *ParticipantController) UpdateParticipant(c *fiber.Ctx) error {
	participantID := c.Params("id")

	var input struct {
		FullName string  `json:"full_name" validate:"omitempty,max=200"`
		Email    string  `json:"email" validate:"omitempty,email"`
		Phone    *string `json:"phone" validate:"omitempty,max=50"`
		Timezone string  `json:"timezone" validate:"omitempty,max=64"`
		IsActive *bool   `json:"is_active"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var participant models.Participant
	if err := pc.DB.First(&participant, "id = ?", participantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Participant not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participant", err)
	}

	if input.Email != "" && input.Email != participant.Email {
		var existing models.Participant
		if err := pc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Participant with this email already exists", nil)
		}
		participant.Email = input.Email
	}
	if input.FullName != "" {
		participant.FullName = input.FullName
	}
	if input.Phone != nil {
		participant.Phone = *input.Phone
	}
	if input.Timezone != "" {
		participant.Timezone = input.Timezone
	}
	if input.IsActive != nil {
		participant.IsActive = *input.IsActive
	}

	if err := pc.DB.Save(&participant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update participant", err)
	}

	return c.JSON(utils.SuccessResponse(participant))
}

// EnrollParticipant enrolls a participant into a program
func (pc *ParticipantController) EnrollParticipant(c *fiber.Ctx) error {
	participantID := c.Params("id")

	var input struct {
		ProgramID uint `json:"program_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var participant models.Participant
	if err := pc.DB.First(&participant, "id = ?", participantID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Participant not found", nil)
	}

	var program models.Program
	if err := pc.DB.First(&program, input.ProgramID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
	}

	var existing models.Enrollment
	if err := pc.DB.Where("participant_id = ? AND program_id = ?", participant.ID, program.ID).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Participant is already enrolled", nil)
	}

	now := time.Now()
	enrollment := models.Enrollment{
		ParticipantID: participant.ID,
		ProgramID:     program.ID,
		EnrolledAt:    &now,
	}

	tx := pc.DB.Begin()
	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enroll participant", err)
	}
	if err := tx.Model(&program).UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update program stats", err)
	}
	tx.Commit()

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(enrollment))
}

// UnenrollParticipant removes a participant from a program
func (pc *ParticipantController) UnenrollParticipant(c *fiber.Ctx) error {
	participantID := c.Params("id")
	programID := c.Params("programID")

	tx := pc.DB.Begin()

	result := tx.Where("participant_id = ? AND program_id = ?", participantID, programID).Delete(&models.Enrollment{})
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unenroll participant", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", nil)
	}

	if err := tx.Model(&models.Program{}).Where("id = ?", programID).
		UpdateColumn("enrollment_count", gorm.Expr("GREATEST(enrollment_count - 1, 0)")).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update program stats", err)
	}

	tx.Commit()

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Participant unenrolled successfully",
	}))
}
