package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collegeoffice_go/models"

	"gorm.io/gorm"
)

const generalCohort = "general"

// NormalizeCohort reduces a subject year label to the value compared between
// schedules: "Grade 1", "1" and " grade 1 " all become "1", empty becomes "general".
func NormalizeCohort(year string) string {
	s := strings.ToLower(strings.TrimSpace(year))
	s = strings.TrimSpace(strings.TrimPrefix(s, "grade"))
	if s == "" {
		return generalCohort
	}
	return s
}

// Overlaps reports whether two time ranges intersect. Touching ranges do not.
func Overlaps(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart.String() < bEnd.String() && aEnd.String() > bStart.String()
}

// ScheduleSlot is an existing schedule row as seen by the conflict checker.
type ScheduleSlot struct {
	ID          uint
	StartTime   models.TimeOfDay
	EndTime     models.TimeOfDay
	Type        string
	SubjectName string
	Year        string
}

// ScheduleLookup provides the rows the conflict checker compares against.
// excludeID of 0 excludes nothing.
type ScheduleLookup interface {
	SubjectYear(ctx context.Context, subjectID uint) (string, bool, error)
	TeacherSlots(ctx context.Context, teacherID uint, day string, excludeID uint) ([]ScheduleSlot, error)
	ProgramSlots(ctx context.Context, programID uint, day string, excludeID uint) ([]ScheduleSlot, error)
}

// ScheduleProposal is a schedule about to be created, or edited when ExcludeID is set.
type ScheduleProposal struct {
	ProgramID uint
	SubjectID *uint
	TeacherID *uint
	DayOfWeek string
	StartTime models.TimeOfDay
	EndTime   models.TimeOfDay
	ExcludeID uint
}

const (
	ConflictTeacher = "teacher"
	ConflictCohort  = "cohort"
)

// Conflict describes the first clash found for a proposal.
type Conflict struct {
	Kind   string
	With   ScheduleSlot
	Reason string
}

func (c *Conflict) Error() string { return c.Reason }

// ConflictChecker validates schedules against the teacher and cohort rules.
// It holds no lock between the check and the caller's write.
type ConflictChecker struct {
	lookup ScheduleLookup
}

func NewConflictChecker(lookup ScheduleLookup) *ConflictChecker {
	return &ConflictChecker{lookup: lookup}
}

// Check returns nil when the proposal is admissible.
func (cc *ConflictChecker) Check(ctx context.Context, p ScheduleProposal) (*Conflict, error) {
	year := "General"
	if p.SubjectID != nil && *p.SubjectID != 0 {
		y, found, err := cc.lookup.SubjectYear(ctx, *p.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("lookup subject year: %w", err)
		}
		if found {
			year = y
		}
	}
	target := NormalizeCohort(year)

	if p.TeacherID != nil && *p.TeacherID != 0 {
		slots, err := cc.lookup.TeacherSlots(ctx, *p.TeacherID, p.DayOfWeek, p.ExcludeID)
		if err != nil {
			return nil, fmt.Errorf("lookup teacher schedules: %w", err)
		}
		for _, s := range slots {
			if Overlaps(s.StartTime, s.EndTime, p.StartTime, p.EndTime) {
				return &Conflict{
					Kind:   ConflictTeacher,
					With:   s,
					Reason: fmt.Sprintf("Teacher is already booked (%s - %s).", s.StartTime, s.EndTime),
				}, nil
			}
		}
	}

	slots, err := cc.lookup.ProgramSlots(ctx, p.ProgramID, p.DayOfWeek, p.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("lookup program schedules: %w", err)
	}
	for _, s := range slots {
		if !Overlaps(s.StartTime, s.EndTime, p.StartTime, p.EndTime) {
			continue
		}
		other := NormalizeCohort(s.Year)
		if other != generalCohort && target != generalCohort && other != target {
			continue
		}
		label := s.Year
		if strings.TrimSpace(label) == "" {
			label = "General"
		}
		name := s.SubjectName
		if name == "" {
			name = s.Type
		}
		if name == "" {
			name = "Break"
		}
		return &Conflict{
			Kind:   ConflictCohort,
			With:   s,
			Reason: fmt.Sprintf("Student batch (%s) is busy with %s (%s - %s).", label, name, s.StartTime, s.EndTime),
		}, nil
	}
	return nil, nil
}

// GormScheduleLookup implements ScheduleLookup over the schedules table.
type GormScheduleLookup struct {
	db *gorm.DB
}

func NewGormScheduleLookup(db *gorm.DB) *GormScheduleLookup {
	return &GormScheduleLookup{db: db}
}

func (l *GormScheduleLookup) SubjectYear(ctx context.Context, subjectID uint) (string, bool, error) {
	var subject models.Subject
	err := l.db.WithContext(ctx).Select("id", "year").First(&subject, subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return subject.Year, true, nil
}

type slotRow struct {
	ID          uint
	StartTime   models.TimeOfDay
	EndTime     models.TimeOfDay
	Type        string
	SubjectName *string
	Year        *string
}

func (l *GormScheduleLookup) slots(ctx context.Context, column string, value uint, day string, excludeID uint) ([]ScheduleSlot, error) {
	q := l.db.WithContext(ctx).
		Table("schedules AS s").
		Select("s.id, s.start_time, s.end_time, s.type, sub.name AS subject_name, sub.year").
		Joins("LEFT JOIN subjects sub ON s.subject_id = sub.id").
		Where("s."+column+" = ? AND s.day_of_week = ?", value, day)
	if excludeID != 0 {
		q = q.Where("s.id <> ?", excludeID)
	}

	var rows []slotRow
	if err := q.Order("s.start_time ASC, s.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ScheduleSlot, 0, len(rows))
	for _, r := range rows {
		slot := ScheduleSlot{ID: r.ID, StartTime: r.StartTime, EndTime: r.EndTime, Type: r.Type}
		if r.SubjectName != nil {
			slot.SubjectName = *r.SubjectName
		}
		if r.Year != nil {
			slot.Year = *r.Year
		}
		out = append(out, slot)
	}
	return out, nil
}

func (l *GormScheduleLookup) TeacherSlots(ctx context.Context, teacherID uint, day string, excludeID uint) ([]ScheduleSlot, error) {
	return l.slots(ctx, "teacher_id", teacherID, day, excludeID)
}

func (l *GormScheduleLookup) ProgramSlots(ctx context.Context, programID uint, day string, excludeID uint) ([]ScheduleSlot, error) {
	return l.slots(ctx, "program_id", programID, day, excludeID)
}
