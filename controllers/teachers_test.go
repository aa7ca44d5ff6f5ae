package controllers

import (
	"net/http"
	"strings"
	"testing"

	"collegeoffice_go/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=office dbname=office sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestTeacherDocumentScopesToTeacher(t *testing.T) {
	db := dryRunDB(t)
	tests := []struct {
		name  string
		query func(tx *gorm.DB) *gorm.DB
	}{
		{"lookup", func(tx *gorm.DB) *gorm.DB {
			var doc models.TeacherDocument
			return teacherDocument(tx, 4, 9).Find(&doc)
		}},
		{"rename", func(tx *gorm.DB) *gorm.DB {
			return teacherDocument(tx, 4, 9).Update("name", "CV")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(tt.query)
			if !strings.Contains(sql, "id = 9 AND teacher_id = 4") {
				t.Fatalf("query not scoped to the teacher: %s", sql)
			}
		})
	}
}

func TestDocumentRoutesRejectBadIDs(t *testing.T) {
	app := newTestApp()
	tc := NewTeacherController(nil, nil)
	app.Put("/teachers/:id/documents/:docId", tc.UpdateDocument)
	app.Delete("/teachers/:id/documents/:docId", tc.DeleteDocument)

	tests := []struct {
		name    string
		method  string
		path    string
		message string
	}{
		{"rename bad teacher", http.MethodPut, "/teachers/abc/documents/3", "Invalid id"},
		{"rename bad document", http.MethodPut, "/teachers/2/documents/0", "Invalid docId"},
		{"delete bad teacher", http.MethodDelete, "/teachers/0/documents/3", "Invalid id"},
		{"delete bad document", http.MethodDelete, "/teachers/2/documents/x", "Invalid docId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Message string `json:"message"`
			}
			if got := doJSON(t, app, tt.method, tt.path, `{"name":"CV"}`, &body); got != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", got)
			}
			if body.Message != tt.message {
				t.Fatalf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}
