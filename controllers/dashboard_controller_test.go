package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsCacheHit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cached := `{"success":true,"data":{"total_leads":5}}`
	require.NoError(t, mr.Set(dashboardCacheKey, cached))

	dc := &DashboardController{Cache: client, Logger: log.New(io.Discard, "", 0)}
	app := fiber.New()
	app.Get("/api/v1/dashboard/stats", dc.GetDashboardStats)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, cached, string(body))
}

func TestDashboardStatsComputed(t *testing.T) {
	gdb, mock := newMockDB(t)

	countRows := func(n int64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads"`).WillReturnRows(countRows(12))
	mock.ExpectQuery(`SELECT priority, COUNT\(\*\) AS count FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"priority", "count"}).
			AddRow("HOT", 2).
			AddRow("COLD", 10))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads"`).WillReturnRows(countRows(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads"`).WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "programs"`).WillReturnRows(countRows(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions"`).WillReturnRows(countRows(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "participants"`).WillReturnRows(countRows(20))

	dc := &DashboardController{DB: gdb, Logger: log.New(io.Discard, "", 0)}
	app := fiber.New()
	app.Get("/api/v1/dashboard/stats", dc.GetDashboardStats)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))

	var body struct {
		Success bool           `json:"success"`
		Data    dashboardStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(12), body.Data.TotalLeads)
	assert.Equal(t, int64(2), body.Data.LeadsByPriority["HOT"])
	assert.Equal(t, int64(10), body.Data.LeadsByPriority["COLD"])
	assert.Equal(t, int64(4), body.Data.PaidDeposits)
	assert.Equal(t, int64(1), body.Data.PaidFull)
	assert.Equal(t, int64(3), body.Data.ActivePrograms)
	assert.Equal(t, int64(5), body.Data.UpcomingSessions)
	assert.Equal(t, int64(20), body.Data.Participants)
	assert.NoError(t, mock.ExpectationsWereMet())
}
