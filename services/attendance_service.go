package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAttendanceDateStatus = errors.New("Date and Status are required")
	ErrAttendanceSubject    = errors.New("Student ID or Teacher ID is required")
)

// AttendanceMark is one register entry for either a student or a teacher.
type AttendanceMark struct {
	StudentID string
	TeacherID *uint
	Date      models.Date
	Status    string
	Remarks   string
}

type AttendanceStats struct {
	AverageRate  int   `json:"averageRate"`
	TotalRecords int64 `json:"totalRecords"`
}

// AverageRate is present/(present+absent) as a rounded percentage.
func AverageRate(present, absent int64) int {
	total := present + absent
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

type ClassAttendanceRecord struct {
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Remarks   string `json:"remarks"`
}

// AttendanceExportRow is a flattened register row for spreadsheets.
type AttendanceExportRow struct {
	Date        string
	Kind        string
	PersonID    string
	Name        string
	Status      string
	Reason      string
	ProgramName string
}

type AttendanceService struct {
	db *database.Database
}

func NewAttendanceService(db *database.Database) *AttendanceService {
	return &AttendanceService{db: db}
}

// ForDate returns the student rows followed by the teacher rows for one day.
func (s *AttendanceService) ForDate(ctx context.Context, date models.Date) ([]interface{}, error) {
	var students []models.StudentAttendance
	if err := s.db.Conn(ctx).Where("date = ?", date).Find(&students).Error; err != nil {
		return nil, fmt.Errorf("load student attendance: %w", err)
	}
	var teachers []models.TeacherAttendance
	if err := s.db.Conn(ctx).Where("date = ?", date).Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("load teacher attendance: %w", err)
	}

	out := make([]interface{}, 0, len(students)+len(teachers))
	for _, r := range students {
		out = append(out, r)
	}
	for _, r := range teachers {
		out = append(out, r)
	}
	return out, nil
}

// Stats covers the student register only.
func (s *AttendanceService) Stats(ctx context.Context) (AttendanceStats, error) {
	var row struct {
		Present int64
		Absent  int64
	}
	err := s.db.Conn(ctx).Model(&models.StudentAttendance{}).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS present, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS absent",
			models.AttendancePresent, models.AttendanceAbsent).
		Scan(&row).Error
	if err != nil {
		return AttendanceStats{}, fmt.Errorf("attendance stats: %w", err)
	}
	return AttendanceStats{AverageRate: AverageRate(row.Present, row.Absent), TotalRecords: row.Present + row.Absent}, nil
}

// Mark upserts one register row; a repeat for the same person and date
// replaces the status.
func (s *AttendanceService) Mark(ctx context.Context, m AttendanceMark) (interface{}, error) {
	if m.Date.IsZero() || m.Status == "" {
		return nil, ErrAttendanceDateStatus
	}
	if m.StudentID == "" && m.TeacherID == nil {
		return nil, ErrAttendanceSubject
	}
	now := time.Now()

	if m.StudentID != "" {
		row := models.StudentAttendance{StudentID: m.StudentID, Date: m.Date, Status: m.Status, Reason: m.Remarks}
		row.CreatedAt = now
		err := s.db.Conn(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "reason", "created_at"}),
		}, clause.Returning{}).Create(&row).Error
		if err != nil {
			return nil, fmt.Errorf("save student attendance: %w", err)
		}
		return row, nil
	}

	row := models.TeacherAttendance{TeacherID: *m.TeacherID, Date: m.Date, Status: m.Status}
	row.CreatedAt = now
	err := s.db.Conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "created_at"}),
	}, clause.Returning{}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("save teacher attendance: %w", err)
	}
	return row, nil
}

// SaveClass replaces the statuses of a class meeting in one transaction.
func (s *AttendanceService) SaveClass(ctx context.Context, scheduleID uint, date models.Date, records []ClassAttendanceRecord) (int, error) {
	if scheduleID == 0 || date.IsZero() {
		return 0, errors.New("Schedule and date are required")
	}
	if len(records) == 0 {
		return 0, nil
	}
	records = LatestClassRecords(records)
	rows := make([]models.ClassAttendance, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.ClassAttendance{
			ScheduleID: scheduleID, StudentID: r.StudentID, Date: date, Status: r.Status, Remarks: r.Remarks,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Schedule{}).Where("id = ?", scheduleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks"}),
		}).CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LatestClassRecords keeps one record per student, the last one given, in
// first-seen order. A single upsert statement may not touch a row twice.
func LatestClassRecords(records []ClassAttendanceRecord) []ClassAttendanceRecord {
	index := make(map[string]int, len(records))
	out := make([]ClassAttendanceRecord, 0, len(records))
	for _, r := range records {
		r.StudentID = strings.TrimSpace(r.StudentID)
		if r.StudentID == "" {
			continue
		}
		if i, ok := index[r.StudentID]; ok {
			out[i] = r
			continue
		}
		index[r.StudentID] = len(out)
		out = append(out, r)
	}
	return out
}

func (s *AttendanceService) ClassRegister(ctx context.Context, scheduleID uint, date models.Date) ([]models.ClassAttendance, error) {
	var rows []models.ClassAttendance
	err := s.db.Conn(ctx).Where("schedule_id = ? AND date = ?", scheduleID, date).
		Order("student_id").Find(&rows).Error
	return rows, err
}

// ExportRows joins both registers with names for [from, to].
func (s *AttendanceService) ExportRows(ctx context.Context, from, to models.Date) ([]AttendanceExportRow, error) {
	var rows []AttendanceExportRow
	err := s.db.Conn(ctx).Raw(`
		SELECT to_char(a.date, 'YYYY-MM-DD') AS date, 'Student' AS kind, a.student_id AS person_id,
		       COALESCE(s.name, '') AS name, a.status, COALESCE(a.reason, '') AS reason, COALESCE(p.name, '') AS program_name
		FROM student_attendance a
		LEFT JOIN students s ON s.id = a.student_id
		LEFT JOIN programs p ON p.id = s.program_id
		WHERE a.date BETWEEN ? AND ?
		UNION ALL
		SELECT to_char(t.date, 'YYYY-MM-DD'), 'Teacher', COALESCE(tc.emp_id, t.teacher_id::text),
		       COALESCE(tc.name, ''), t.status, '', COALESCE(p.name, '')
		FROM teacher_attendance t
		LEFT JOIN teachers tc ON tc.id = t.teacher_id
		LEFT JOIN programs p ON p.id = tc.program_id
		WHERE t.date BETWEEN ? AND ?
		ORDER BY 1, 2, 3`, from, to, from, to).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("attendance export: %w", err)
	}
	return rows, nil
}
