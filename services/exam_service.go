package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamStatusAt derives the status shown for an exam at now. Cancelled exams
// and exams without a date keep their stored status.
func ExamStatusAt(e models.Exam, now time.Time) string {
	if e.Status == models.ExamCancelled || e.ExamDate == nil || e.ExamDate.IsZero() {
		return e.Status
	}
	start := models.MustTimeOfDay("00:00:00")
	end := models.MustTimeOfDay("23:59:00")
	if e.StartTime != nil {
		start = *e.StartTime
	}
	if e.EndTime != nil {
		end = *e.EndTime
	}

	loc := now.Location()
	y, m, d := e.ExamDate.Date()
	examStart := time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), 0, loc)
	examEnd := time.Date(y, m, d, end.Hour(), end.Minute(), end.Second(), 0, loc)

	switch {
	case now.After(examEnd):
		return models.ExamCompleted
	case !now.Before(examStart):
		return models.ExamOngoing
	default:
		return models.ExamUpcoming
	}
}

var ErrExamDateRequired = errors.New("exam date is required")

// ExamInput carries the exam fields plus its parts and enrolled students.
// The first part, when present, supplies the exam's date, times and venue.
type ExamInput struct {
	Title        string
	ProgramID    *uint
	SubjectID    *uint
	SupervisorID *uint
	SlotID       *uint
	ExamDate     *models.Date
	StartTime    *models.TimeOfDay
	EndTime      *models.TimeOfDay
	Venue        string
	Parts        []models.ExamPart
	StudentIDs   []string
}

func (in *ExamInput) apply(e *models.Exam) {
	e.Title = in.Title
	e.ProgramID = in.ProgramID
	e.SubjectID = in.SubjectID
	e.SupervisorID = in.SupervisorID
	e.SlotID = in.SlotID
	e.ExamDate, e.StartTime, e.EndTime, e.Venue = in.ExamDate, in.StartTime, in.EndTime, in.Venue
	if len(in.Parts) > 0 {
		first := in.Parts[0]
		date := first.Date
		e.ExamDate = &date
		e.StartTime, e.EndTime, e.Venue = first.StartTime, first.EndTime, first.Venue
	}
}

// ExamResultInput updates one enrolled student's marks.
type ExamResultInput struct {
	StudentID     string
	MarksObtained *float64
	Grade         string
	Status        string
	Remarks       string
}

// ExamService runs the multi-step exam writes inside one transaction each.
type ExamService struct {
	db *database.Database
}

func NewExamService(db *database.Database) *ExamService {
	return &ExamService{db: db}
}

func enrol(tx *gorm.DB, examID uint, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	rows := make([]models.ExamResult, 0, len(studentIDs))
	for _, id := range studentIDs {
		rows = append(rows, models.ExamResult{ExamID: examID, StudentID: id, Status: models.AttendancePresent})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

func replaceParts(tx *gorm.DB, examID uint, parts []models.ExamPart) error {
	if err := tx.Where("exam_id = ?", examID).Delete(&models.ExamPart{}).Error; err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	rows := make([]models.ExamPart, len(parts))
	for i, p := range parts {
		p.ID = 0
		p.ExamID = examID
		if p.PartNo == 0 {
			p.PartNo = i + 1
		}
		rows[i] = p
	}
	return tx.Create(&rows).Error
}

// Create inserts the exam, its parts and enrolments.
func (s *ExamService) Create(ctx context.Context, in ExamInput) (*models.Exam, error) {
	exam := models.Exam{TotalMarks: 100, Status: models.ExamUpcoming}
	in.apply(&exam)
	if exam.ExamDate == nil || exam.ExamDate.IsZero() {
		return nil, ErrExamDateRequired
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&exam).Error; err != nil {
			return fmt.Errorf("insert exam: %w", err)
		}
		if err := replaceParts(tx, exam.ID, in.Parts); err != nil {
			return fmt.Errorf("insert exam parts: %w", err)
		}
		if err := enrol(tx, exam.ID, in.StudentIDs); err != nil {
			return fmt.Errorf("enrol students: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "students": len(in.StudentIDs)}).Info("Exam created")
	return &exam, nil
}

// Update rewrites the exam row and parts, and enrols only new students so
// graded results are never removed.
func (s *ExamService) Update(ctx context.Context, id uint, in ExamInput) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var exam models.Exam
		if err := tx.First(&exam, id).Error; err != nil {
			return err
		}
		in.apply(&exam)
		err := tx.Model(&exam).Select("title", "program_id", "subject_id", "supervisor_id", "slot_id",
			"exam_date", "start_time", "end_time", "venue").Updates(&exam).Error
		if err != nil {
			return fmt.Errorf("update exam: %w", err)
		}
		if len(in.Parts) > 0 {
			if err := replaceParts(tx, id, in.Parts); err != nil {
				return fmt.Errorf("replace exam parts: %w", err)
			}
		}
		return enrol(tx, id, in.StudentIDs)
	})
}

// SaveResults writes marks for enrolled students and optionally the exam status.
func (s *ExamService) SaveResults(ctx context.Context, examID uint, results []ExamResultInput, status string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, r := range results {
			err := tx.Model(&models.ExamResult{}).
				Where("exam_id = ? AND student_id = ?", examID, r.StudentID).
				Updates(map[string]interface{}{
					"marks_obtained": r.MarksObtained,
					"grade":          r.Grade,
					"status":         r.Status,
					"remarks":        r.Remarks,
				}).Error
			if err != nil {
				return fmt.Errorf("save result for %s: %w", r.StudentID, err)
			}
		}
		if status == "" {
			return nil
		}
		return tx.Model(&models.Exam{}).Where("id = ?", examID).Update("status", status).Error
	})
}

// MarkFinished persists Completed for exams whose end has passed. It returns
// the number of rows changed.
func (s *ExamService) MarkFinished(ctx context.Context, now time.Time) (int, error) {
	var exams []models.Exam
	err := s.db.Conn(ctx).
		Where("status IN ? AND exam_date IS NOT NULL AND exam_date <= ?",
			[]string{models.ExamUpcoming, models.ExamOngoing}, models.DateOf(now)).
		Find(&exams).Error
	if err != nil {
		return 0, err
	}

	var ids []uint
	for _, e := range exams {
		if ExamStatusAt(e, now) == models.ExamCompleted {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.Conn(ctx).Model(&models.Exam{}).Where("id IN ?", ids).Update("status", models.ExamCompleted)
	return int(res.RowsAffected), res.Error
}
