package controller

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cohortly/config"
	"cohortly/models"
	"cohortly/utils"
)

const dashboardCacheKey = "dashboard:stats"
const dashboardCacheTTL = 60 * time.Second

type DashboardController struct {
	DB     *gorm.DB
	Cache  *redis.Client // nil when Redis is disabled
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	dc := &DashboardController{
		DB:     db,
		Logger: logger,
	}
	if config.AppConfig.Redis.Enabled {
		dc.Cache = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
	}
	return dc
}

type dashboardStats struct {
	TotalLeads       int64            `json:"total_leads"`
	LeadsByPriority  map[string]int64 `json:"leads_by_priority"`
	PaidDeposits     int64            `json:"paid_deposits"`
	PaidFull         int64            `json:"paid_full"`
	ActivePrograms   int64            `json:"active_programs"`
	UpcomingSessions int64            `json:"upcoming_sessions"` // next 7 days
	Participants     int64            `json:"participants"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// GetDashboardStats returns the admin landing-page counters, cached briefly
// in Redis when available. A cache failure degrades to a live query.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	if dc.Cache != nil {
		cached, err := dc.Cache.Get(context.Background(), dashboardCacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set("X-Cache", "hit")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}
	}

	stats := dashboardStats{
		LeadsByPriority: make(map[string]int64),
		GeneratedAt:     time.Now(),
	}

	if err := dc.DB.Model(&models.Lead{}).Count(&stats.TotalLeads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}

	type priorityCount struct {
		Priority string
		Count    int64
	}
	var priorities []priorityCount
	if err := dc.DB.Model(&models.Lead{}).
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Scan(&priorities).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}
	for _, p := range priorities {
		stats.LeadsByPriority[p.Priority] = p.Count
	}

	dc.DB.Model(&models.Lead{}).Where("paid_deposit = true").Count(&stats.PaidDeposits)
	dc.DB.Model(&models.Lead{}).Where("paid_full = true").Count(&stats.PaidFull)
	dc.DB.Model(&models.Program{}).Where("status = ?", "active").Count(&stats.ActivePrograms)
	dc.DB.Model(&models.Session{}).
		Where("status = ? AND starts_at BETWEEN ? AND ?", "scheduled", time.Now(), time.Now().AddDate(0, 0, 7)).
		Count(&stats.UpcomingSessions)
	dc.DB.Model(&models.Participant{}).Where("is_active = true").Count(&stats.Participants)

	body, err := json.Marshal(utils.SuccessResponse(stats))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to encode stats", err)
	}

	if dc.Cache != nil {
		if err := dc.Cache.Set(context.Background(), dashboardCacheKey, body, dashboardCacheTTL).Err(); err != nil {
			dc.Logger.Printf("Failed to cache dashboard stats: %v", err)
		}
	}

	c.Set("X-Cache", "miss")
	c.Set("Content-Type", "application/json")
	return c.Send(body)
}
