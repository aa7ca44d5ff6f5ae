package seeders

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"collegeoffice_go/config"
	"collegeoffice_go/database"
	"collegeoffice_go/models"
	"collegeoffice_go/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEnsureAdminWithoutPassword(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"nil config", nil},
		{"empty password", &config.Config{AdminUsername: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The database is never touched, so a nil handle is fine.
			seeded, err := EnsureAdmin(context.Background(), nil, tt.cfg)
			if err != nil || seeded {
				t.Fatalf("EnsureAdmin = (%v, %v), want (false, nil)", seeded, err)
			}
		})
	}
}

func TestIntegrationEnsureAdminCreatesLoginOnce(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" || os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("set INTEGRATION_TESTS=1 and TEST_DATABASE_URL to run against PostgreSQL")
	}
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_URL")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	ctx := context.Background()
	if _, err := database.NewMigrator(db, database.Migrations).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{AdminUsername: fmt.Sprintf("it-admin-%d", time.Now().UnixNano()), AdminPassword: "first-login-pass"}
	t.Cleanup(func() { db.Where("username = ?", cfg.AdminUsername).Delete(&models.User{}) })

	for i := 0; i < 2; i++ {
		if seeded, err := EnsureAdmin(ctx, db, cfg); err != nil || !seeded {
			t.Fatalf("run %d: EnsureAdmin = (%v, %v)", i+1, seeded, err)
		}
	}

	var users []models.User
	if err := db.Where("username = ?", cfg.AdminUsername).Find(&users).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(users) != 1 || users[0].Role != "admin" {
		t.Fatalf("users = %+v, want one admin", users)
	}
	if err := utils.CheckPassword(cfg.AdminPassword, users[0].Password); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}
}
