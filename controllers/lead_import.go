package controller

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"

	"cohortly/models"
	"cohortly/utils"
)

// ImportLeadsRequest is the body of the import function: one batch of raw
// CRM export rows, mapped and written in input order.
type ImportLeadsRequest struct {
	CSVData []utils.RawRow `json:"csvData"`
}

// UpsertLeads submits the mapped records as a single batch write, using
// record_id as the conflict key. Rows matching an existing record_id are
// fully overwritten with the new values, not merged; rows without one are
// plain inserts. One statement, so the batch applies or fails as a unit.
// Storage failures are returned unmodified with no retry.
func (lc *LeadController) UpsertLeads(leads []models.Lead) (int64, error) {
	result := lc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}},
		UpdateAll: true,
	}).Create(&leads)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ImportLeads accepts {"csvData": [...]} from the CRM export integration,
// maps every row through the lead normalizer and dispatches one batch
// upsert. The response shape is fixed by the existing integration:
// 200 {success, imported, message}, 400 {error} on a storage failure,
// 500 {error} on anything unexpected. No per-row breakdown is reported.
func (lc *LeadController) ImportLeads(c *fiber.Ctx) error {
	var input ImportLeadsRequest
	if err := c.BodyParser(&input); err != nil {
		sentry.CaptureException(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if len(input.CSVData) == 0 {
		return c.JSON(fiber.Map{
			"success":  true,
			"imported": 0,
			"message":  "Successfully imported 0 leads",
		})
	}

	leads := make([]models.Lead, 0, len(input.CSVData))
	for _, row := range input.CSVData {
		leads = append(leads, utils.MapLeadRow(row))
	}

	imported, err := lc.UpsertLeads(leads)
	if err != nil {
		lc.Logger.Printf("Lead import failed: %v", err)
		utils.LogEvent("lead_import_failed", map[string]interface{}{
			"rows":  len(leads),
			"error": err.Error(),
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	utils.LogEvent("lead_import", map[string]interface{}{
		"rows":     len(leads),
		"imported": imported,
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"imported": imported,
		"message":  fmt.Sprintf("Successfully imported %d leads", imported),
	})
}
