package controller

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/models"
	"cohortly/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewLeadController(db *gorm.DB, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: logger,
	}
}

// CreateLead creates a single lead by hand (imports go through ImportLeads)
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var input struct {
		RecordID    *string `json:"record_id" validate:"omitempty,max=100"`
		FullName    string  `json:"full_name" validate:"required,max=200"`
		Email       *string `json:"email" validate:"omitempty,email"`
		Phone       *string `json:"phone" validate:"omitempty,max=50"`
		Instagram   *string `json:"instagram" validate:"omitempty,max=100"`
		CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
		Priority    string  `json:"priority" validate:"omitempty,oneof=HOT WARM COLD"`
		Seats       int     `json:"seats" validate:"omitempty,min=1"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.RecordID != nil {
		var existing models.Lead
		if err := lc.DB.Where("record_id = ?", *input.RecordID).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Lead with this record ID already exists", nil)
		}
	}

	lead := models.Lead{
		RecordID:    input.RecordID,
		FullName:    input.FullName,
		Email:       input.Email,
		Phone:       input.Phone,
		Instagram:   input.Instagram,
		CompanyName: input.CompanyName,
		Priority:    input.Priority,
		Seats:       input.Seats,
	}
	if lead.Priority == "" {
		lead.Priority = "COLD"
	}
	if lead.Seats == 0 {
		lead.Seats = 1
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLeads returns paginated list of leads with filters
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	// Filters
	priority := c.Query("priority")
	email := c.Query("email")
	name := c.Query("name")
	paid := c.Query("paid")

	query := lc.DB.Model(&models.Lead{})

	if priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}
	if name != "" {
		query = query.Where("full_name ILIKE ?", "%"+name+"%")
	}
	switch paid {
	case "deposit":
		query = query.Where("paid_deposit = true AND paid_full = false")
	case "full":
		query = query.Where("paid_full = true")
	case "none":
		query = query.Where("paid_deposit = false AND paid_full = false")
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	var total int64
	query.Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead by ID
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates lead details
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var input struct {
		FullName    *string `json:"full_name" validate:"omitempty,max=200"`
		Email       *string `json:"email" validate:"omitempty,email"`
		Phone       *string `json:"phone" validate:"omitempty,max=50"`
		CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
		Priority    *string `json:"priority" validate:"omitempty,oneof=HOT WARM COLD"`
		Seats       *int    `json:"seats" validate:"omitempty,min=1"`
		PaidDeposit *bool   `json:"paid_deposit"`
		PaidFull    *bool   `json:"paid_full"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := lc.DB.First(&lead, "id = ?", leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if input.FullName != nil {
		lead.FullName = *input.FullName
	}
	if input.Email != nil {
		lead.Email = input.Email
	}
	if input.Phone != nil {
		lead.Phone = input.Phone
	}
	if input.CompanyName != nil {
		lead.CompanyName = input.CompanyName
	}
	if input.Priority != nil {
		lead.Priority = *input.Priority
	}
	if input.Seats != nil {
		lead.Seats = *input.Seats
	}
	if input.PaidDeposit != nil {
		lead.PaidDeposit = *input.PaidDeposit
	}
	if input.PaidFull != nil {
		lead.PaidFull = *input.PaidFull
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead deletes a lead
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	result := lc.DB.Where("id = ?", leadID).Delete(&models.Lead{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Lead deleted successfully",
	}))
}

// ExportLeads exports leads to CSV
func (lc *LeadController) ExportLeads(c *fiber.Ctx) error {
	var leads []models.Lead
	if err := lc.DB.Order("created_at").Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=leads_export_"+time.Now().Format("20060102")+".csv")

	writer := csv.NewWriter(c)
	defer writer.Flush()

	header := []string{"record_id", "full_name", "email", "phone", "company_name", "priority", "seats", "payment_amount", "balance", "paid_deposit", "paid_full"}
	if err := writer.Write(header); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
	}

	for _, lead := range leads {
		record := []string{
			derefString(lead.RecordID),
			lead.FullName,
			derefString(lead.Email),
			derefString(lead.Phone),
			derefString(lead.CompanyName),
			lead.Priority,
			strconv.Itoa(lead.Seats),
			formatAmount(lead.PaymentAmount),
			formatAmount(lead.Balance),
			strconv.FormatBool(lead.PaidDeposit),
			strconv.FormatBool(lead.PaidFull),
		}
		if err := writer.Write(record); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
		}
	}

	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatAmount(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}
