package controllers

import (
	"context"
	"errors"
	"strings"

	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ScheduleView is a schedule row joined with its subject, teacher and program names.
type ScheduleView struct {
	ID        uint             `json:"id"`
	Day       string           `json:"day"`
	StartTime models.TimeOfDay `json:"startTime"`
	EndTime   models.TimeOfDay `json:"endTime"`
	Subject   *string          `json:"subject"`
	Teacher   *string          `json:"teacher"`
	Program   *string          `json:"program"`
	Type      string           `json:"type"`
	ProgramID uint             `json:"programId"`
	SubjectID *uint            `json:"subjectId"`
	TeacherID *uint            `json:"teacherId"`
}

type ScheduleFilter struct {
	ProgramID *uint
	Year      string
}

// ScheduleStore persists weekly schedule rows.
type ScheduleStore interface {
	List(ctx context.Context, f ScheduleFilter) ([]ScheduleView, error)
	Create(ctx context.Context, s *models.Schedule) error
	// Update returns gorm.ErrRecordNotFound when no row has s.ID.
	Update(ctx context.Context, s *models.Schedule) error
	Delete(ctx context.Context, id uint) error
}

type gormScheduleStore struct{ db *gorm.DB }

func NewGormScheduleStore(db *gorm.DB) ScheduleStore { return &gormScheduleStore{db: db} }

func (s *gormScheduleStore) List(ctx context.Context, f ScheduleFilter) ([]ScheduleView, error) {
	q := s.db.WithContext(ctx).Table("schedules s").
		Select("s.id, s.day_of_week AS day, s.start_time, s.end_time, s.type, " +
			"sub.name AS subject, t.name AS teacher, p.name AS program, s.program_id, s.subject_id, s.teacher_id").
		Joins("LEFT JOIN subjects sub ON s.subject_id = sub.id").
		Joins("LEFT JOIN teachers t ON s.teacher_id = t.id").
		Joins("LEFT JOIN programs p ON s.program_id = p.id")
	if f.ProgramID != nil {
		q = q.Where("s.program_id = ?", *f.ProgramID)
	}
	if f.Year != "" {
		q = q.Where("sub.year = ?", f.Year)
	}
	rows := []ScheduleView{}
	err := q.Order("s.day_of_week, s.start_time ASC").Scan(&rows).Error
	return rows, err
}

func (s *gormScheduleStore) Create(ctx context.Context, sc *models.Schedule) error {
	return s.db.WithContext(ctx).Create(sc).Error
}

func (s *gormScheduleStore) Update(ctx context.Context, sc *models.Schedule) error {
	res := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", sc.ID).
		Select("program_id", "subject_id", "teacher_id", "day_of_week", "start_time", "end_time", "type").
		Updates(sc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *gormScheduleStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Schedule{}, id).Error
}

type ScheduleController struct {
	store   ScheduleStore
	checker *services.ConflictChecker
}

func NewScheduleController(store ScheduleStore, checker *services.ConflictChecker) *ScheduleController {
	return &ScheduleController{store: store, checker: checker}
}

type ScheduleRequest struct {
	ProgramID utils.FlexID `json:"programId"`
	SubjectID utils.FlexID `json:"subjectId"`
	TeacherID utils.FlexID `json:"teacherId"`
	Day       string       `json:"day"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Type      string       `json:"type"`
}

const breakType = "Break"

// toSchedule validates the request and returns the row to write.
func (r ScheduleRequest) toSchedule() (*models.Schedule, error) {
	day := strings.TrimSpace(r.Day)
	if r.ProgramID == 0 || day == "" || strings.TrimSpace(r.StartTime) == "" || strings.TrimSpace(r.EndTime) == "" {
		return nil, errors.New("Missing required fields")
	}
	if r.Type != breakType && r.SubjectID == 0 {
		return nil, errors.New("Subject is required for classes")
	}
	start, err := models.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, errors.New("Invalid start time")
	}
	end, err := models.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, errors.New("Invalid end time")
	}
	if !start.Before(end) {
		return nil, errors.New("Start time must be before end time")
	}
	return &models.Schedule{
		ProgramID: uint(r.ProgramID),
		SubjectID: r.SubjectID.Ptr(),
		TeacherID: r.TeacherID.Ptr(),
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Type:      r.Type,
	}, nil
}

// GetSchedules lists schedules, optionally for one program and cohort.
func (sc *ScheduleController) GetSchedules(c *fiber.Ctx) error {
	var f ScheduleFilter
	if p := c.Query("programId"); p != "" && p != "All" {
		id, err := utils.ParseOptionalUint(p)
		if err != nil {
			return badRequest(c, "Invalid programId")
		}
		f.ProgramID = id
	}
	if y := c.Query("year"); y != "All" {
		f.Year = y
	}
	rows, err := sc.store.List(c.UserContext(), f)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

// checked validates the body and runs the conflict checker. A non-nil
// response error means the handler already replied.
func (sc *ScheduleController) checked(c *fiber.Ctx, excludeID uint) (*models.Schedule, bool, error) {
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false, badRequest(c, "Invalid request body")
	}
	schedule, err := req.toSchedule()
	if err != nil {
		return nil, false, badRequest(c, err.Error())
	}

	conflict, err := sc.checker.Check(c.UserContext(), services.ScheduleProposal{
		ProgramID: schedule.ProgramID,
		SubjectID: schedule.SubjectID,
		TeacherID: schedule.TeacherID,
		DayOfWeek: schedule.DayOfWeek,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, false, serverError(c, err)
	}
	if conflict != nil {
		return nil, false, c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": conflict.Reason})
	}
	return schedule, true, nil
}

// CreateSchedule adds a weekly slot after the conflict check.
func (sc *ScheduleController) CreateSchedule(c *fiber.Ctx) error {
	schedule, ok, resp := sc.checked(c, 0)
	if !ok {
		return resp
	}
	if err := sc.store.Create(c.UserContext(), schedule); err != nil {
		return dbError(c, err, "Schedule not found")
	}
	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (sc *ScheduleController) UpdateSchedule(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	schedule, ok, resp := sc.checked(c, id)
	if !ok {
		return resp
	}
	schedule.ID = id
	if err := sc.store.Update(c.UserContext(), schedule); err != nil {
		return dbError(c, err, "Schedule not found")
	}
	return c.JSON(schedule)
}

func (sc *ScheduleController) DeleteSchedule(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := sc.store.Delete(c.UserContext(), id); err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Schedule deleted successfully"})
}
