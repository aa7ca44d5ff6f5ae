package seeders

import (
	"context"
	"errors"
	"fmt"

	"collegeoffice_go/config"
	"collegeoffice_go/models"
	"collegeoffice_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAll runs all seeders
func SeedAll(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	logrus.Info("Starting database seeding...")

	if err := SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}
	if err := SeedPrograms(ctx, db); err != nil {
		return err
	}

	logrus.Info("Database seeding completed successfully!")
	return nil
}

// EnsureAdmin seeds the administrator login from config on startup. It is a
// no-op, reporting false, when ADMIN_PASSWORD is unset.
func EnsureAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) (bool, error) {
	if cfg == nil || cfg.AdminPassword == "" {
		return false, nil
	}
	return true, SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword)
}

// SeedAdmin creates the administrator login when it does not exist yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required to seed the admin user")
	}
	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		logrus.WithField("username", username).Info("Admin user already seeded, skipping...")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := models.User{Username: username, Password: hash, Role: "admin"}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	logrus.WithField("username", username).Info("Admin user seeded successfully")
	return nil
}

type sampleProgram struct {
	program  models.Program
	subjects []models.Subject
}

func samplePrograms() []sampleProgram {
	return []sampleProgram{
		{
			program: models.Program{Name: "Grade 1-5", Type: "Primary", Category: "School", Duration: "5 Years"},
			subjects: []models.Subject{
				{Name: "Mathematics", Year: "Grade 1"},
				{Name: "English", Year: "Grade 1"},
				{Name: "Environmental Studies", Year: "Grade 2"},
			},
		},
		{
			program: models.Program{Name: "A/L Science", Type: "Advanced Level", Category: "School", Duration: "2 Years"},
			subjects: []models.Subject{
				{Name: "Combined Mathematics", Year: "Grade 12"},
				{Name: "Physics", Year: "Grade 12"},
				{Name: "Chemistry", Year: "Grade 13"},
			},
		},
		{
			program: models.Program{Name: "Hifz", Type: "Religious", Category: "Madrasa", Duration: "3 Years"},
			subjects: []models.Subject{
				{Name: "Tajweed", Year: "1"},
				{Name: "Memorisation", Year: "1"},
			},
		},
	}
}

// SeedPrograms seeds the programs table and their subjects
func SeedPrograms(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Program{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("Programs already seeded, skipping...")
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sp := range samplePrograms() {
			program := sp.program
			if err := tx.Create(&program).Error; err != nil {
				return fmt.Errorf("seed program %s: %w", program.Name, err)
			}
			for _, subject := range sp.subjects {
				subject.ProgramID = &program.ID
				if err := tx.Create(&subject).Error; err != nil {
					return fmt.Errorf("seed subject %s: %w", subject.Name, err)
				}
			}
		}
		logrus.Info("Programs seeded successfully")
		return nil
	})
}
