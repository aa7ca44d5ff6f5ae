package services

import (
	"context"
	"fmt"

	"collegeoffice_go/database"
	"collegeoffice_go/models"
	"collegeoffice_go/utils"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaintenanceService holds the one-off data repair operations shared by the
// utility endpoints and the maintenance command.
type MaintenanceService struct {
	db *database.Database
}

func NewMaintenanceService(db *database.Database) *MaintenanceService {
	return &MaintenanceService{db: db}
}

// DedupeTeacherPrograms rewrites assigned_programs with trimmed unique
// entries, also dropping remove when given. It returns the names changed.
func (s *MaintenanceService) DedupeTeacherPrograms(ctx context.Context, remove string) ([]string, error) {
	var teachers []models.Teacher
	if err := s.db.Conn(ctx).Select("id", "name", "assigned_programs").
		Where("assigned_programs IS NOT NULL").Find(&teachers).Error; err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}

	changed := []string{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, t := range teachers {
			cleaned := utils.CleanPrograms(t.AssignedPrograms, remove)
			if equalPrograms(cleaned, t.AssignedPrograms) {
				continue
			}
			if err := tx.Model(&models.Teacher{}).Where("id = ?", t.ID).
				Update("assigned_programs", pq.StringArray(cleaned)).Error; err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"teacher_id": t.ID, "old": t.AssignedPrograms, "new": cleaned}).
				Info("Fixed teacher assigned programs")
			changed = append(changed, t.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dedupe teacher programs: %w", err)
	}
	return changed, nil
}

// ClearTeacherPrograms nulls assigned_programs for every teacher.
func (s *MaintenanceService) ClearTeacherPrograms(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Teacher{}).Order("id").Pluck("name", &names).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Model(&models.Teacher{}).
			Update("assigned_programs", gorm.Expr("NULL")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("clear teacher programs: %w", err)
	}
	return names, nil
}

// clearOrder deletes children before parents. users and the migration
// ledger are kept.
var clearOrder = []string{
	"exam_results", "exam_parts", "exams", "examination_slots",
	"class_sessions", "class_attendance", "student_attendance", "teacher_attendance",
	"schedules", "teacher_documents", "students", "teachers", "subjects", "programs",
	"calendar_events", "activity_logs",
}

// ClearData empties the office tables in one transaction.
func (s *MaintenanceService) ClearData(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(clearOrder))
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, table := range clearOrder {
			res := tx.Exec("DELETE FROM " + table)
			if res.Error != nil {
				return fmt.Errorf("clear %s: %w", table, res.Error)
			}
			counts[table] = res.RowsAffected
		}
		return nil
	})
	return counts, err
}

func equalPrograms(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
