package controllers

import (
	"errors"
	"strconv"
	"time"

	"collegeoffice_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LogController struct {
	queue   *services.ActivityLogQueue
	archive *services.LogArchiveService
}

func NewLogController(queue *services.ActivityLogQueue, archive *services.LogArchiveService) *LogController {
	return &LogController{queue: queue, archive: archive}
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	logs, total, err := lc.queue.List(c.UserContext(), services.ActivityFilter{
		Resource: c.Query("resource"),
		Action:   c.Query("action"),
		Username: c.Query("username"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return serverError(c, err)
	}
	pending, err := lc.queue.Pending(c.UserContext())
	if err != nil {
		logrus.WithError(err).Warn("Failed to count cached logs")
	}
	return c.JSON(fiber.Map{
		"data":    logs,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pending": pending,
	})
}

// FlushCachedLogs manually flushes cached logs to database (Admin only)
func (lc *LogController) FlushCachedLogs(c *fiber.Ctx) error {
	flushed, err := lc.queue.Flush(c.UserContext(), time.Now())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":         "Cached logs flushing completed",
		"processed_count": flushed,
	})
}

// ArchiveLogs archives logs older than ?days= (default 90).
func (lc *LogController) ArchiveLogs(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "90"))
	if err != nil {
		return badRequest(c, "Invalid days")
	}
	archive, err := lc.archive.ArchiveOldLogs(c.UserContext(), days, time.Now())
	if err != nil {
		return badRequest(c, err.Error())
	}
	if archive == nil {
		return c.JSON(fiber.Map{"message": "No logs to archive"})
	}
	return c.JSON(fiber.Map{"message": "Logs archived", "archive": archive})
}

func (lc *LogController) GetArchives(c *fiber.Ctx) error {
	archives, err := lc.archive.GetArchivedLogs(c.UserContext())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(archives)
}

func (lc *LogController) DownloadArchive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	body, name, err := lc.archive.DownloadArchive(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrArchiveNotFound) {
			return notFound(c, "Archive not found")
		}
		return serverError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	// Fiber closes the stream once the body has been written.
	return c.SendStream(body)
}
