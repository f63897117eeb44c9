package routes

import (
	"log"
	"os"

	controller "cohortly/controllers"
	"cohortly/middleware"
	"cohortly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupImportRoutes(app *fiber.App, db *gorm.DB) {
	importLogger := log.New(os.Stdout, "IMPORT: ", log.Ldate|log.Ltime|log.Lshortfile)

	leadController := controller.NewLeadController(db, importLogger)

	// Import endpoint group with logging middleware. Kept unauthenticated so
	// the spreadsheet sync job can push rows with only its rate-limit budget.
	functions := app.Group("/functions/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	functions.Post("/import-leads", middleware.ImportRateLimiter(), leadController.ImportLeads)

	importLogger.Println("Import routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, hub *controller.NotificationHub) {
	// Initialize controllers with their respective loggers
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	companyController := controller.NewCompanyController(db, log.New(os.Stdout, "COMPANY: ", log.LstdFlags))
	programController := controller.NewProgramController(db, log.New(os.Stdout, "PROGRAM: ", log.LstdFlags))
	sessionController := controller.NewSessionController(db, log.New(os.Stdout, "SESSION: ", log.LstdFlags))
	participantController := controller.NewParticipantController(db, log.New(os.Stdout, "PARTICIPANT: ", log.LstdFlags))
	surveyController := controller.NewSurveyController(db, log.New(os.Stdout, "SURVEY: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(db, hub, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// Admin API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(utils.RoleAdmin), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/export", leadController.ExportLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Delete("/:id", leadController.DeleteLead)

	// Company routes
	company := api.Group("/companies")
	company.Post("/", companyController.CreateCompany)
	company.Get("/", companyController.GetCompanies)
	company.Get("/:id", companyController.GetCompany)
	company.Put("/:id", companyController.UpdateCompany)
	company.Delete("/:id", companyController.DeleteCompany)

	// Program routes with nested sessions, surveys and broadcast
	program := api.Group("/programs")
	program.Post("/", programController.CreateProgram)
	program.Get("/", programController.GetPrograms)
	program.Get("/:id", programController.GetProgram)
	program.Put("/:id", programController.UpdateProgram)
	program.Delete("/:id", programController.DeleteProgram)
	program.Post("/:id/sessions", sessionController.CreateSession)
	program.Get("/:id/sessions", sessionController.GetSessions)
	program.Get("/:id/surveys", surveyController.GetProgramSurveys)
	program.Post("/:id/broadcast", notificationController.BroadcastNotification)

	// Session routes
	session := api.Group("/sessions")
	session.Put("/:id", sessionController.UpdateSession)
	session.Delete("/:id", sessionController.DeleteSession)

	// Participant routes
	participant := api.Group("/participants")
	participant.Post("/", participantController.CreateParticipant)
	participant.Get("/", participantController.GetParticipants)
	participant.Get("/:id", participantController.GetParticipant)
	participant.Put("/:id", participantController.UpdateParticipant)
	participant.Post("/:id/enrollments", participantController.EnrollParticipant)
	participant.Delete("/:id/enrollments/:programID", participantController.UnenrollParticipant)

	// Participant-facing group: enrolled users acting on their own data
	me := app.Group("/api/v1/me", middleware.Protected(utils.RoleParticipant), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	me.Get("/sessions", sessionController.GetMySessions)
	me.Get("/notifications", notificationController.GetMyNotifications)
	me.Put("/notifications/:id/read", notificationController.MarkNotificationRead)
	me.Post("/surveys", surveyController.SubmitSurvey)
	me.Get("/surveys/:programID", surveyController.GetMySurvey)

	// WebSocket route for the live notification feed. Auth happens inside
	// the handler because the token arrives as a query parameter.
	wsLogger := log.New(os.Stdout, "WS: ", log.LstdFlags)
	app.Get("/api/v1/notifications/ws", websocket.New(controller.HandleNotificationWS(hub, wsLogger)))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, hub *controller.NotificationHub) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup import routes
	SetupImportRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db, hub)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
