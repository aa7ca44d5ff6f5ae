package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"collegeoffice_go/models"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"duration":   time.Since(start).String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
			"request_id": GetRequestID(c),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("HTTP Request")
		} else {
			entry.Info("HTTP Request")
		}
		return err
	}
}

// ActivityRecorder stores one activity log entry.
type ActivityRecorder interface {
	Enqueue(ctx context.Context, entry models.ActivityLog) error
}

// ActivityLogMiddleware records successful mutating /api requests. onChange,
// when set, runs after each recorded entry.
func ActivityLogMiddleware(rec ActivityRecorder, onChange func(entry models.ActivityLog)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead || c.Method() == fiber.MethodOptions ||
			strings.HasSuffix(c.Path(), "/login") || strings.HasSuffix(c.Path(), "/logout") {
			return c.Next()
		}

		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			return err
		}

		var action string
		switch c.Method() {
		case fiber.MethodPost:
			action = "CREATE"
		case fiber.MethodPut, fiber.MethodPatch:
			action = "UPDATE"
		case fiber.MethodDelete:
			action = "DELETE"
		default:
			return nil
		}

		entry := ActivityEntry(c, action)
		if rec != nil {
			if err := rec.Enqueue(context.Background(), entry); err != nil {
				logrus.WithError(err).WithField("path", c.Path()).Error("Failed to save activity log")
			}
		}
		if onChange != nil {
			onChange(entry)
		}
		return nil
	}
}

// ActivityEntry describes the current request; the resource is the path
// segment after /api and the id is the first route parameter found.
func ActivityEntry(c *fiber.Ctx, action string) models.ActivityLog {
	// Fiber reuses request buffers once the handler returns.
	path := fiberutils.CopyString(c.Path())
	entry := models.ActivityLog{
		Action:    action,
		Resource:  resourceFromPath(path),
		IPAddress: fiberutils.CopyString(c.IP()),
		UserAgent: fiberutils.CopyString(c.Get("User-Agent")),
	}
	entry.CreatedAt = time.Now().UTC()
	for _, key := range []string{"id", "scheduleId"} {
		if v := c.Params(key); v != "" {
			entry.ResourceID = fiberutils.CopyString(v)
			break
		}
	}
	if claims, ok := c.Locals("claims").(*Claims); ok {
		entry.UserID = claims.UserID
		entry.Username = claims.Username
	}

	details, err := json.Marshal(map[string]interface{}{
		"method":      c.Method(),
		"path":        path,
		"query":       string(c.Request().URI().QueryString()),
		"status_code": c.Response().StatusCode(),
		"request_id":  GetRequestID(c),
	})
	if err == nil {
		entry.Details = details
	}
	return entry
}

func resourceFromPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) >= 2 && parts[0] == "api" {
		return parts[1]
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
