package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/models"
	"cohortly/utils"
)

type CompanyController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCompanyController(db *gorm.DB, logger *log.Logger) *CompanyController {
	return &CompanyController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCompany creates a new company
func (cc *CompanyController) CreateCompany(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name" validate:"required,max=200"`
		Website  string `json:"website" validate:"omitempty,max=200"`
		Industry string `json:"industry" validate:"omitempty,max=100"`
		Notes    string `json:"notes" validate:"omitempty,max=2000"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.Company
	if err := cc.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Company with this name already exists", nil)
	}

	company := models.Company{
		Name:     input.Name,
		Website:  input.Website,
		Industry: input.Industry,
		Notes:    input.Notes,
	}

	if err := cc.DB.Create(&company).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create company", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(company))
}

// GetCompanies returns all companies
func (cc *CompanyController) GetCompanies(c *fiber.Ctx) error {
	var companies []models.Company
	if err := cc.DB.Order("name").Find(&companies).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch companies", err)
	}

	return c.JSON(utils.SuccessResponse(companies))
}

// GetCompany returns a single company with its programs
func (cc *CompanyController) GetCompany(c *fiber.Ctx) error {
	companyID := c.Params("id")

	var company models.Company
	if err := cc.DB.Preload("Programs").First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch company", err)
	}

	return c.JSON(utils.SuccessResponse(company))
}

// UpdateCompany updates company details
func (cc *CompanyController) UpdateCompany(c *fiber.Ctx) error {
	companyID := c.Params("id")

	var input struct {
		Name     string `json:"name" validate:"omitempty,max=200"`
		Website  string `json:"website" validate:"omitempty,max=200"`
		Industry string `json:"industry" validate:"omitempty,max=100"`
		Notes    string `json:"notes" validate:"omitempty,max=2000"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var company models.Company
	if err := cc.DB.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch company", err)
	}

	if input.Name != "" && input.Name != company.Name {
		var existing models.Company
		if err := cc.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Company with this name already exists", nil)
		}
		company.Name = input.Name
	}
	if input.Website != "" {
		company.Website = input.Website
	}
	if input.Industry != "" {
		company.Industry = input.Industry
	}
	if input.Notes != "" {
		company.Notes = input.Notes
	}

	if err := cc.DB.Save(&company).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update company", err)
	}

	return c.JSON(utils.SuccessResponse(company))
}

// DeleteCompany deletes a company
func (cc *CompanyController) DeleteCompany(c *fiber.Ctx) error {
	companyID := c.Params("id")

	// Companies with programs attached must be archived, not deleted
	var programCount int64
	if err := cc.DB.Model(&models.Program{}).Where("company_id = ?", companyID).Count(&programCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check company programs", err)
	}
	if programCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Company still has programs attached", nil)
	}

	result := cc.DB.Where("id = ?", companyID).Delete(&models.Company{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete company", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Company deleted successfully",
	}))
}
