package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/models"
	"cohortly/utils"
)

type SurveyController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSurveyController(db *gorm.DB, logger *log.Logger) *SurveyController {
	return &SurveyController{
		DB:     db,
		Logger: logger,
	}
}

// SubmitSurvey records the authenticated participant's onboarding survey
// for a program. One response per participant per program.
func (sc *SurveyController) SubmitSurvey(c *fiber.Ctx) error {
	participantID := c.Locals("subjectID").(uint)

	var input struct {
		ProgramID          uint   `json:"program_id" validate:"required"`
		Goals              string `json:"goals" validate:"required,max=2000"`
		ExperienceLevel    string `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
		Expectations       string `json:"expectations" validate:"omitempty,max=2000"`
		SchedulePreference string `json:"schedule_preference" validate:"omitempty,oneof=morning afternoon evening"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Only enrolled participants can submit
	var enrollment models.Enrollment
	if err := sc.DB.Where("participant_id = ? AND program_id = ?", participantID, input.ProgramID).First(&enrollment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not enrolled in this program", nil)
	}

	var existing models.SurveyResponse
	if err := sc.DB.Where("participant_id = ? AND program_id = ?", participantID, input.ProgramID).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Survey already submitted for this program", nil)
	}

	response := models.SurveyResponse{
		ParticipantID:      participantID,
		ProgramID:          input.ProgramID,
		Goals:              input.Goals,
		ExperienceLevel:    input.ExperienceLevel,
		Expectations:       input.Expectations,
		SchedulePreference: input.SchedulePreference,
		SubmittedAt:        time.Now(),
	}

	if err := sc.DB.Create(&response).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to submit survey", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(response))
}

// GetMySurvey returns the participant's own survey response for a program
func (sc *SurveyController) GetMySurvey(c *fiber.Ctx) error {
	participantID := c.Locals("subjectID").(uint)
	programID := c.Params("programID")

	var response models.SurveyResponse
	if err := sc.DB.Where("participant_id = ? AND program_id = ?", participantID, programID).First(&response).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Survey not submitted yet", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch survey", err)
	}

	return c.JSON(utils.SuccessResponse(response))
}

// GetProgramSurveys lists survey responses for a program (admin view)
func (sc *SurveyController) GetProgramSurveys(c *fiber.Ctx) error {
	programID := c.Params("id")

	var responses []models.SurveyResponse
	if err := sc.DB.Where("program_id = ?", programID).Order("submitted_at DESC").Find(&responses).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch surveys", err)
	}

	return c.JSON(utils.SuccessResponse(responses))
}
