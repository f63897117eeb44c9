package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cohortly/middleware"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func newImportApp(t *testing.T, gdb *gorm.DB) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(middleware.CORS())
	lc := NewLeadController(gdb, log.New(io.Discard, "", 0))
	app.Post("/functions/v1/import-leads", lc.ImportLeads)
	return app
}

func postImport(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/import-leads", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestImportLeadsBatch(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "leads" .* ON CONFLICT \("record_id"\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectCommit()

	resp := postImport(t, app, `{"csvData":[
		{"Record ID":"R1","Record":"Jane Doe","Paid Desposit":"Yes","Payment ":"1,000.00"},
		{"Record ID":"R2","Record":"Bob","Seats":"2"},
		{"Record":"No Record ID"}
	]}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["imported"])
	assert.Equal(t, "Successfully imported 3 leads", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsRepeatDispatchUpserts(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	payload := `{"csvData":[{"Record ID":"R1","Record":"Jane Doe"}]}`

	// Dispatching the same record_id twice must go through the conflict
	// clause both times: the second run overwrites the stored row instead
	// of inserting a duplicate
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "leads" .* ON CONFLICT \("record_id"\) DO UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		resp := postImport(t, app, payload)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["imported"])
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsStorageFailure(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "leads"`).
		WillReturnError(errors.New("value too long for type character varying"))
	mock.ExpectRollback()

	resp := postImport(t, app, `{"csvData":[{"Record ID":"R1"}]}`)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body, "error")
	assert.NotContains(t, body, "imported")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsEmptyBatch(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	resp := postImport(t, app, `{"csvData":[]}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["imported"])
	assert.Equal(t, "Successfully imported 0 leads", body["message"])
	// No rows means no database round trip
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsMissingField(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	resp := postImport(t, app, `{}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["imported"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsMalformedBody(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newImportApp(t, gdb)

	resp := postImport(t, app, `{"csvData": [`)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body, "error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLeadsPreflight(t *testing.T) {
	gdb, _ := newMockDB(t)
	app := newImportApp(t, gdb)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/import-leads", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestGetLeadNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)

	app := fiber.New()
	lc := NewLeadController(gdb, log.New(io.Discard, "", 0))
	app.Get("/api/v1/leads/:id", lc.GetLead)

	mock.ExpectQuery(`SELECT \* FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/99", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
