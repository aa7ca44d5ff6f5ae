package controllers

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	attendance *services.AttendanceService
	export     *services.ExportService
}

func NewAttendanceController(attendance *services.AttendanceService, export *services.ExportService) *AttendanceController {
	return &AttendanceController{attendance: attendance, export: export}
}

// GetAttendance returns the student and teacher register for ?date=.
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	raw := c.Query("date")
	if raw == "" {
		return badRequest(c, "Date is required")
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return badRequest(c, "Invalid date")
	}
	rows, err := ac.attendance.ForDate(c.UserContext(), date)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

func (ac *AttendanceController) GetStats(c *fiber.Ctx) error {
	stats, err := ac.attendance.Stats(c.UserContext())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(stats)
}

type MarkAttendanceRequest struct {
	StudentID utils.FlexString `json:"studentId"`
	TeacherID utils.FlexID     `json:"teacherId"`
	Date      string           `json:"date"`
	Status    string           `json:"status"`
	Remarks   string           `json:"remarks"`
}

func (ac *AttendanceController) MarkAttendance(c *fiber.Ctx) error {
	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	var date models.Date
	if strings.TrimSpace(req.Date) != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			return badRequest(c, "Invalid date")
		}
		date = d
	}
	row, err := ac.attendance.Mark(c.UserContext(), services.AttendanceMark{
		StudentID: strings.TrimSpace(req.StudentID.String()),
		TeacherID: req.TeacherID.Ptr(),
		Date:      date,
		Status:    req.Status,
		Remarks:   req.Remarks,
	})
	if err != nil {
		if errors.Is(err, services.ErrAttendanceDateStatus) || errors.Is(err, services.ErrAttendanceSubject) {
			return badRequest(c, err.Error())
		}
		return dbError(c, err, "Attendance record not found")
	}
	return c.JSON(row)
}

type ClassAttendanceRequest struct {
	ScheduleID utils.FlexID                     `json:"scheduleId" validate:"required"`
	Date       string                           `json:"date" validate:"required"`
	Records    []services.ClassAttendanceRecord `json:"records" validate:"dive"`
}

// SaveClassAttendance writes the register of one class meeting in bulk.
func (ac *AttendanceController) SaveClassAttendance(c *fiber.Ctx) error {
	var req ClassAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date")
	}
	saved, err := ac.attendance.SaveClass(c.UserContext(), uint(req.ScheduleID), date, req.Records)
	if err != nil {
		return dbError(c, err, "Schedule not found")
	}
	return c.JSON(fiber.Map{"message": "Class attendance saved", "saved": saved})
}

func (ac *AttendanceController) GetClassAttendance(c *fiber.Ctx) error {
	scheduleID, err := utils.ParseOptionalUint(c.Query("scheduleId"))
	if err != nil || scheduleID == nil {
		return badRequest(c, "scheduleId is required")
	}
	date, err := models.ParseDate(c.Query("date"))
	if err != nil {
		return badRequest(c, "Date is required")
	}
	rows, err := ac.attendance.ClassRegister(c.UserContext(), *scheduleID, date)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

// ExportAttendance streams both registers for ?from=&to= as XLSX.
func (ac *AttendanceController) ExportAttendance(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := ac.export.Attendance(c.UserContext(), c.Query("from"), c.Query("to"), &buf); err != nil {
		if errors.Is(err, services.ErrInvalidRange) {
			return badRequest(c, err.Error())
		}
		return serverError(c, err)
	}
	fileName := "attendance_" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(buf.Bytes())
}

type SessionController struct {
	sessions *services.SessionService
	now      func() time.Time
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions, now: time.Now}
}

// GetSessions reconciles attendance-inferred and explicit statuses for
// ?from=&to= (default: the last 30 days) and optional ?scheduleId=.
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	today := models.DateOf(sc.now())
	r := services.SessionRange{From: models.DateOf(today.AddDate(0, 0, -30)), To: today}
	if v := c.Query("from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return badRequest(c, "Invalid from date")
		}
		r.From = d
	}
	if v := c.Query("to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return badRequest(c, "Invalid to date")
		}
		r.To = d
	}
	if v := c.Query("scheduleId"); v != "" {
		id, err := utils.ParseOptionalUint(v)
		if err != nil {
			return badRequest(c, "Invalid scheduleId")
		}
		if id != nil {
			r.ScheduleID = *id
		}
	}
	if r.To.Before(r.From.Time) {
		return badRequest(c, "from must not be after to")
	}
	rows, err := sc.sessions.List(c.UserContext(), r)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

type SessionStatusRequest struct {
	ScheduleID utils.FlexID `json:"scheduleId" validate:"required"`
	Date       string       `json:"date" validate:"required"`
	Status     string       `json:"status" validate:"required"`
	Notes      string       `json:"notes"`
}

// SetSessionStatus records an explicit Completed or Cancelled status.
func (sc *SessionController) SetSessionStatus(c *fiber.Ctx) error {
	var req SessionStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date")
	}
	session := models.ClassSession{
		ScheduleID: uint(req.ScheduleID),
		Date:       date,
		Status:     req.Status,
		Notes:      req.Notes,
		UpdatedAt:  sc.now(),
	}
	if err := sc.sessions.SetStatus(c.UserContext(), &session); err != nil {
		if errors.Is(err, services.ErrInvalidSessionStatus) {
			return badRequest(c, "Status must be Completed or Cancelled")
		}
		return dbError(c, err, "Schedule not found")
	}
	return c.JSON(session)
}

func (sc *SessionController) ClearSessionStatus(c *fiber.Ctx) error {
	scheduleID, err := parseID(c, "scheduleId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	date, err := models.ParseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date")
	}
	removed, err := sc.sessions.ClearStatus(c.UserContext(), scheduleID, date)
	if err != nil {
		return serverError(c, err)
	}
	if !removed {
		return notFound(c, "Session status not found")
	}
	return c.JSON(fiber.Map{"message": "Session status cleared"})
}
