package middleware

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"collegeoffice_go/models"
	"collegeoffice_go/storage"

	"github.com/gofiber/fiber/v2"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("0123456789abcdef", time.Hour, nil)
	token, err := m.GenerateToken(&models.User{BaseModel: models.BaseModel{ID: 3}, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.Parse(context.Background(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "admin" || claims.Role != "admin" || claims.UserID != 3 {
		t.Fatalf("unexpected claims %+v", claims)
	}

	other := NewJWTManager("another-secret-value", time.Hour, nil)
	if _, err := other.Parse(context.Background(), token); err == nil {
		t.Fatalf("expected signature error with a different secret")
	}
}

func TestJWTMiddleware(t *testing.T) {
	m := NewJWTManager("0123456789abcdef", time.Hour, nil)
	token, _ := m.GenerateToken(&models.User{Username: "admin", Role: "admin"})

	app := fiber.New()
	app.Get("/private", m.Middleware(), func(c *fiber.Ctx) error {
		claims, err := GetCurrentClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.Username)
	})
	app.Get("/open", m.Protect(false), func(c *fiber.Ctx) error {
		if _, err := GetCurrentClaims(c); err != nil {
			return c.SendString("anonymous")
		}
		return c.SendString("user")
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/private", "", http.StatusUnauthorized},
		{"bad format", "/private", "Token abc", http.StatusUnauthorized},
		{"bad token", "/private", "Bearer abc", http.StatusUnauthorized},
		{"valid", "/private", "Bearer " + token, http.StatusOK},
		{"optional anonymous", "/open", "", http.StatusOK},
		{"optional invalid", "/open", "Bearer abc", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

type recorderFake struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (r *recorderFake) Enqueue(ctx context.Context, entry models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func TestActivityLogMiddleware(t *testing.T) {
	rec := &recorderFake{}
	var changed []string
	app := fiber.New()
	app.Use(RequestID())
	app.Use(ActivityLogMiddleware(rec, func(e models.ActivityLog) { changed = append(changed, e.Resource) }))
	app.Get("/api/students", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Delete("/api/students/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Put("/api/programs/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNotFound) })
	app.Post("/api/login", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/students"},
		{http.MethodDelete, "/api/students/ST-9"},
		{http.MethodPut, "/api/programs/4"},
		{http.MethodPost, "/api/login"},
	} {
		if _, err := app.Test(httptest.NewRequest(r.method, r.path, nil)); err != nil {
			t.Fatalf("%s %s: %v", r.method, r.path, err)
		}
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 recorded entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != "DELETE" || e.Resource != "students" || e.ResourceID != "ST-9" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if len(changed) != 1 || changed[0] != "students" {
		t.Fatalf("unexpected change callbacks %v", changed)
	}
}

func TestUploaderFields(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	up := NewUploader(store, 1024, "pdf,png", 0)

	var got map[string]UploadedFile
	app := fiber.New()
	app.Post("/students", up.Fields(StudentFiles...), func(c *fiber.Ctx) error {
		got = Uploads(c)
		return c.SendStatus(http.StatusCreated)
	})

	send := func(fields map[string]string, files map[string]string) *http.Response {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		for k, v := range fields {
			_ = w.WriteField(k, v)
		}
		for field, name := range files {
			part, _ := w.CreateFormFile(field, name)
			_, _ = part.Write([]byte("content"))
		}
		w.Close()
		req := httptest.NewRequest(http.MethodPost, "/students", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp
	}

	resp := send(map[string]string{"indexNumber": "ST/01"}, map[string]string{"nicFront": "front.PDF", "unknownField": "x.pdf"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(got) != 1 || got["nicFront"].URL != "/uploads/ST01-nicFront.pdf" {
		t.Fatalf("unexpected uploads %+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "ST01-nicFront.pdf")); err != nil {
		t.Fatalf("file not stored: %v", err)
	}

	resp = send(nil, map[string]string{"studentPhoto": "photo.exe"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed extension, got %d", resp.StatusCode)
	}

	resp = send(nil, map[string]string{"medicalReport": "report.pdf"})
	if resp.StatusCode != http.StatusCreated || got["medicalReport"].URL != "/uploads/Unknown-medicalReport.pdf" {
		t.Fatalf("expected Unknown prefix, got %+v", got)
	}
}

func TestResourceFromPath(t *testing.T) {
	tests := map[string]string{
		"/api/students/ST-1":      "students",
		"/api/attendance/class":   "attendance",
		"/health":                 "health",
		"/api/calendar/events/12": "calendar",
	}
	for in, want := range tests {
		if got := resourceFromPath(in); got != want {
			t.Fatalf("resourceFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
