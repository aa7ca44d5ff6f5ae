package routes

import (
	"collegeoffice_go/config"
	"collegeoffice_go/controllers"
	"collegeoffice_go/database"
	"collegeoffice_go/middleware"
	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// Deps carries the shared services the route handlers are built from.
type Deps struct {
	Config      *config.Config
	DB          *database.Database
	JWT         *middleware.JWTManager
	Hub         *websocket.Hub
	Uploader    *middleware.Uploader
	Activity    *services.ActivityLogQueue
	Archive     *services.LogArchiveService
	Exams       *services.ExamService
	Attendance  *services.AttendanceService
	Export      *services.ExportService
	Sessions    *services.SessionService
	Dashboard   *services.DashboardService
	Maintenance *services.MaintenanceService
	Health      *services.HealthService
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, d Deps) {
	db := d.DB.DB
	cfg := d.Config

	authController := controllers.NewAuthController(controllers.NewGormUserStore(db), d.JWT)
	studentController := controllers.NewStudentController(db, d.Export)
	teacherController := controllers.NewTeacherController(db, d.Uploader.Store())
	programController := controllers.NewProgramController(d.DB)
	subjectController := controllers.NewSubjectController(db)
	scheduleController := controllers.NewScheduleController(
		controllers.NewGormScheduleStore(db),
		services.NewConflictChecker(services.NewGormScheduleLookup(db)),
	)
	sessionController := controllers.NewSessionController(d.Sessions)
	attendanceController := controllers.NewAttendanceController(d.Attendance, d.Export)
	examController := controllers.NewExamController(db, d.Exams)
	slotController := controllers.NewSlotController(db)
	calendarController := controllers.NewCalendarController(db)
	dashboardController := controllers.NewDashboardController(d.Dashboard)
	utilityController := controllers.NewUtilityController(d.Maintenance)
	logController := controllers.NewLogController(d.Activity, d.Archive)
	healthController := controllers.NewHealthController(d.Health)
	wsController := controllers.NewWebSocketController(d.Hub, d.JWT, cfg.RequireAuth)

	app.Get("/health", healthController.GetHealthStatus)

	// WebSocket change feed: ws://<host>/ws?token=<JWT>
	app.Use("/ws", wsController.Upgrade)
	app.Get("/ws", wsController.WebSocketHandler())

	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api")

	// Public routes (no authentication required)
	api.Post("/login", authController.Login)
	api.Post("/auth/login", authController.Login)

	// Every mutating call below is recorded and announced on the change feed.
	onChange := func(entry models.ActivityLog) {
		d.Dashboard.Invalidate()
		d.Hub.Publish(websocket.Event{
			Type:     "change",
			Resource: entry.Resource,
			Action:   entry.Action,
			ID:       entry.ResourceID,
			At:       entry.CreatedAt,
		})
	}
	protected := api.Group("/", d.JWT.Protect(cfg.RequireAuth), middleware.ActivityLogMiddleware(d.Activity, onChange))

	adminOnly := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RequireAuth {
		adminOnly = middleware.RequireRole("admin")
	}

	protected.Get("/auth/profile", d.JWT.Middleware(), authController.Profile)
	protected.Post("/auth/logout", d.JWT.Middleware(), authController.Logout)

	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/export", studentController.ExportStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", d.Uploader.Fields(middleware.StudentFiles...), studentController.SaveStudent)
	students.Delete("/:id", studentController.DeleteStudent)

	teachers := protected.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Get("/:id/stats", teacherController.GetTeacherStats)
	teachers.Post("/", d.Uploader.Fields(middleware.TeacherFiles...), teacherController.CreateTeacher)
	teachers.Put("/:id", d.Uploader.Fields(middleware.TeacherFiles...), teacherController.UpdateTeacher)
	teachers.Delete("/:id", teacherController.DeleteTeacher)
	teachers.Get("/:id/documents", teacherController.GetDocuments)
	teachers.Post("/:id/documents", d.Uploader.Document(), teacherController.UploadDocument)
	teachers.Put("/:id/documents/:docId", teacherController.UpdateDocument)
	teachers.Delete("/:id/documents/:docId", teacherController.DeleteDocument)

	programs := protected.Group("/programs")
	programs.Get("/", programController.GetPrograms)
	programs.Post("/", programController.CreateProgram)
	programs.Put("/:id", programController.UpdateProgram)
	programs.Delete("/:id", programController.DeleteProgram)

	subjects := protected.Group("/subjects")
	subjects.Get("/", subjectController.GetSubjects)
	subjects.Post("/", subjectController.CreateSubject)
	subjects.Put("/:id", subjectController.UpdateSubject)
	subjects.Delete("/:id", subjectController.DeleteSubject)

	schedules := protected.Group("/schedules")
	schedules.Get("/", scheduleController.GetSchedules)
	schedules.Post("/", scheduleController.CreateSchedule)
	schedules.Put("/:id", scheduleController.UpdateSchedule)
	schedules.Delete("/:id", scheduleController.DeleteSchedule)

	sessions := protected.Group("/sessions")
	sessions.Get("/", sessionController.GetSessions)
	sessions.Put("/", sessionController.SetSessionStatus)
	sessions.Delete("/:scheduleId/:date", sessionController.ClearSessionStatus)

	attendance := protected.Group("/attendance")
	attendance.Get("/", attendanceController.GetAttendance)
	attendance.Get("/stats", attendanceController.GetStats)
	attendance.Get("/export", attendanceController.ExportAttendance)
	attendance.Get("/class", attendanceController.GetClassAttendance)
	attendance.Post("/", attendanceController.MarkAttendance)
	attendance.Post("/class", attendanceController.SaveClassAttendance)

	exams := protected.Group("/exams")
	exams.Get("/", examController.GetExams)
	exams.Post("/", examController.CreateExam)
	exams.Put("/:id", examController.UpdateExam)
	exams.Get("/:id/details", examController.GetExamDetails)
	exams.Post("/:id/results", examController.SaveResults)
	exams.Patch("/:id/status", examController.UpdateStatus)
	exams.Delete("/:id", examController.DeleteExam)

	slots := protected.Group("/slots")
	slots.Get("/", slotController.GetSlots)
	slots.Post("/", slotController.CreateSlot)
	slots.Put("/:id", slotController.UpdateSlot)
	slots.Delete("/:id", slotController.DeleteSlot)

	calendar := protected.Group("/calendar")
	calendar.Get("/events", calendarController.GetEvents)
	calendar.Post("/events", calendarController.CreateEvent)
	calendar.Put("/events/:id", calendarController.UpdateEvent)
	calendar.Delete("/events/:id", calendarController.DeleteEvent)

	protected.Get("/dashboard", dashboardController.GetSummary)

	utility := protected.Group("/utility", adminOnly)
	utility.Get("/clear-teacher-programs", utilityController.ClearTeacherPrograms)
	utility.Post("/clear-teacher-programs", utilityController.ClearTeacherPrograms)
	utility.Post("/dedupe-teacher-programs", utilityController.DedupeTeacherPrograms)

	logs := protected.Group("/logs", adminOnly)
	logs.Get("/", logController.GetLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)
	logs.Post("/archive", logController.ArchiveLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Get("/archives/:id/download", logController.DownloadArchive)

	protected.Get("/ws/stats", adminOnly, wsController.GetWebSocketStats)
}
