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

type ProgramController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProgramController(db *gorm.DB, logger *log.Logger) *ProgramController {
	return &ProgramController{
		DB:     db,
		Logger: logger,
	}
}

// CreateProgram creates a new program (cohort)
func (pc *ProgramController) CreateProgram(c *fiber.Ctx) error {
	var input struct {
		Name        string  `json:"name" validate:"required,max=200"`
		ProgramType string  `json:"program_type" validate:"required,oneof=sprint_workshop master_class"`
		Description string  `json:"description" validate:"omitempty,max=2000"`
		CompanyID   *uint   `json:"company_id"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.CompanyID != nil {
		var company models.Company
		if err := pc.DB.First(&company, *input.CompanyID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
	}

	program := models.Program{
		Name:        input.Name,
		ProgramType: input.ProgramType,
		Description: input.Description,
		CompanyID:   input.CompanyID,
		StartDate:   parseDateParam(input.StartDate),
		EndDate:     parseDateParam(input.EndDate),
	}

	if program.StartDate != nil && program.EndDate != nil && program.EndDate.Before(*program.StartDate) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "End date must not be before start date", nil)
	}

	if err := pc.DB.Create(&program).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create program", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(program))
}

// GetPrograms returns paginated programs with filters
func (pc *ProgramController) GetPrograms(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	status := c.Query("status")
	programType := c.Query("type")
	companyID := c.Query("company_id")

	query := pc.DB.Model(&models.Program{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if programType != "" {
		query = query.Where("program_type = ?", programType)
	}
	if companyID != "" {
		query = query.Where("company_id = ?", utils.ParseUint(companyID))
	}

	var programs []models.Program
	if err := query.Order("start_date DESC NULLS LAST").Offset(offset).Limit(limit).Find(&programs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch programs", err)
	}

	var total int64
	query.Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  programs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetProgram returns a single program with its sessions
func (pc *ProgramController) GetProgram(c *fiber.Ctx) error {
	programID := c.Params("id")

	var program models.Program
	if err := pc.DB.Preload("Sessions", func(db *gorm.DB) *gorm.DB {
		return db.Order("starts_at")
	}).First(&program, "id = ?", programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch program", err)
	}

	return c.JSON(utils.SuccessResponse(program))
}

// UpdateProgram updates program details
func (pc *ProgramController) UpdateProgram(c *fiber.Ctx) error {
	programID := c.Params("id")

	var input struct {
		Name        string  `json:"name" validate:"omitempty,max=200"`
		ProgramType string  `json:"program_type" validate:"omitempty,oneof=sprint_workshop master_class"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		Status      string  `json:"status" validate:"omitempty,oneof=draft active completed archived"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var program models.Program
	if err := pc.DB.First(&program, "id = ?", programID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch program", err)
	}

	if input.Name != "" {
		program.Name = input.Name
	}
	if input.ProgramType != "" {
		program.ProgramType = input.ProgramType
	}
	if input.Description != nil {
		program.Description = *input.Description
	}
	if input.Status != "" {
		program.Status = input.Status
	}
	if input.StartDate != nil {
		program.StartDate = parseDateParam(input.StartDate)
	}
	if input.EndDate != nil {
		program.EndDate = parseDateParam(input.EndDate)
	}

	if err := pc.DB.Save(&program).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update program", err)
	}

	return c.JSON(utils.SuccessResponse(program))
}

// DeleteProgram deletes a program and its sessions/enrollments
func (pc *ProgramController) DeleteProgram(c *fiber.Ctx) error {
	programID := c.Params("id")

	tx := pc.DB.Begin()

	if err := tx.Where("program_id = ?", programID).Delete(&models.Session{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete program sessions", err)
	}

	if err := tx.Where("program_id = ?", programID).Delete(&models.Enrollment{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete program enrollments", err)
	}

	result := tx.Where("id = ?", programID).Delete(&models.Program{})
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete program", result.Error)
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Program not found", nil)
	}

	tx.Commit()

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Program deleted successfully",
	}))
}

// parseDateParam parses a YYYY-MM-DD request field, nil when empty or invalid
func parseDateParam(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
