package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collegeoffice_go/config"
	"collegeoffice_go/database"
	"collegeoffice_go/database/seeders"
	"collegeoffice_go/middleware"
	"collegeoffice_go/routes"
	"collegeoffice_go/services"
	"collegeoffice_go/services/websocket"
	"collegeoffice_go/storage"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	serviceName    = "College Office API"
	serviceVersion = "1.0.0"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: "Run the HTTP API. When ADMIN_PASSWORD is set the admin login is created on\n" +
		"startup if missing; otherwise run `collegeoffice seed` before the first login.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), config.AppConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.SkipMigrate {
		applied, err := database.NewMigrator(db.DB, database.Migrations).Up(ctx)
		if err != nil {
			return err
		}
		logrus.WithField("applied", len(applied)).Info("Database migrations up to date")
	}

	seeded, err := seeders.EnsureAdmin(ctx, db.DB, cfg)
	if err != nil {
		return err
	}
	if !seeded {
		logrus.Warn("ADMIN_PASSWORD not set; run `collegeoffice seed` to create a login")
	}

	store, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	var bucket services.ArchiveBucket
	if cfg.AWSRegion != "" && cfg.S3BucketName != "" {
		b, err := services.NewS3ArchiveBucket(ctx, cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			logrus.WithError(err).Warn("Log archiving disabled")
		} else {
			bucket = b
		}
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	activity := services.NewActivityLogQueue(db, cfg.UseRedisActivityLog)
	archive := services.NewLogArchiveService(db, bucket)
	exams := services.NewExamService(db)
	attendance := services.NewAttendanceService(db)

	var cronArchive *services.LogArchiveService
	if bucket != nil {
		cronArchive = archive
	}
	scheduler := services.NewScheduleManager(cfg, activity, cronArchive, exams)
	if err := scheduler.Start(); err != nil {
		return err
	}

	health := services.NewHealthService(db, cfg, serviceName, serviceVersion, store)
	health.SetStartTime(time.Now())

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(cfg.MaxFileSize) * 10,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggerMiddleware())

	routes.SetupRoutes(app, routes.Deps{
		Config:      cfg,
		DB:          db,
		JWT:         middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn, db.Redis),
		Hub:         hub,
		Uploader:    middleware.NewUploader(store, cfg.MaxFileSize, cfg.AllowedExtensions, cfg.ImageMaxWidth),
		Activity:    activity,
		Archive:     archive,
		Exams:       exams,
		Attendance:  attendance,
		Export:      services.NewExportService(db, attendance),
		Sessions:    services.NewSessionService(db.DB),
		Dashboard:   services.NewDashboardService(db, cfg.DashboardCacheTTL),
		Maintenance: services.NewMaintenanceService(db),
		Health:      health,
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
			"path":    c.Path(),
			"method":  c.Method(),
		})
	})

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.AppEnv,
			"storage":     store.Name(),
		}).Info("Server starting")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown incomplete")
	}
	scheduler.Stop(shutdownCtx)
	if n, err := activity.Flush(shutdownCtx, time.Now()); err != nil {
		logrus.WithError(err).Warn("Final activity log flush failed")
	} else if n > 0 {
		logrus.WithField("flushed", n).Info("Flushed activity logs on shutdown")
	}
	return nil
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":      err.Error(),
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"status":     code,
		"request_id": middleware.GetRequestID(c),
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{"message": message})
}
