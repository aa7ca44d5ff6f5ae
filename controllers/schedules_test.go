package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"collegeoffice_go/models"
	"collegeoffice_go/services"

	"gorm.io/gorm"
)

type stubLookup struct {
	years    map[uint]string
	teachers []services.ScheduleSlot
	programs []services.ScheduleSlot
}

func (s *stubLookup) SubjectYear(_ context.Context, id uint) (string, bool, error) {
	y, ok := s.years[id]
	return y, ok, nil
}

func without(slots []services.ScheduleSlot, id uint) []services.ScheduleSlot {
	var out []services.ScheduleSlot
	for _, sl := range slots {
		if id == 0 || sl.ID != id {
			out = append(out, sl)
		}
	}
	return out
}

func (s *stubLookup) TeacherSlots(_ context.Context, _ uint, _ string, excludeID uint) ([]services.ScheduleSlot, error) {
	return without(s.teachers, excludeID), nil
}

func (s *stubLookup) ProgramSlots(_ context.Context, _ uint, _ string, excludeID uint) ([]services.ScheduleSlot, error) {
	return without(s.programs, excludeID), nil
}

type memScheduleStore struct {
	rows   map[uint]*models.Schedule
	nextID uint
}

func (m *memScheduleStore) List(context.Context, ScheduleFilter) ([]ScheduleView, error) {
	return []ScheduleView{}, nil
}

func (m *memScheduleStore) Create(_ context.Context, s *models.Schedule) error {
	m.nextID++
	s.ID = m.nextID
	m.rows[s.ID] = s
	return nil
}

func (m *memScheduleStore) Update(_ context.Context, s *models.Schedule) error {
	if _, ok := m.rows[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rows[s.ID] = s
	return nil
}

func (m *memScheduleStore) Delete(_ context.Context, id uint) error {
	delete(m.rows, id)
	return nil
}

func slot(id uint, start, end, subject, year string) services.ScheduleSlot {
	return services.ScheduleSlot{
		ID: id, StartTime: models.MustTimeOfDay(start), EndTime: models.MustTimeOfDay(end),
		Type: "Lecture", SubjectName: subject, Year: year,
	}
}

func TestScheduleHandlers(t *testing.T) {
	lookup := &stubLookup{
		years:    map[uint]string{1: "Grade 1", 2: "Grade 2", 3: "1"},
		teachers: []services.ScheduleSlot{slot(10, "08:00:00", "09:00:00", "Maths", "Grade 2")},
		programs: []services.ScheduleSlot{slot(11, "10:00:00", "11:00:00", "Science", "Grade 1")},
	}
	store := &memScheduleStore{rows: map[uint]*models.Schedule{}, nextID: 20}
	store.rows[11] = &models.Schedule{BaseModel: models.BaseModel{ID: 11}}
	app := newTestApp()
	ctl := NewScheduleController(store, services.NewConflictChecker(lookup))
	app.Post("/api/schedules", ctl.CreateSchedule)
	app.Put("/api/schedules/:id", ctl.UpdateSchedule)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"missing fields", http.MethodPost, "/api/schedules", `{"programId":1,"day":"Monday"}`, 400, "Missing required fields"},
		{"subject required", http.MethodPost, "/api/schedules",
			`{"programId":1,"day":"Monday","startTime":"08:00","endTime":"09:00","type":"Lecture"}`, 400, "Subject is required for classes"},
		{"inverted times", http.MethodPost, "/api/schedules",
			`{"programId":1,"subjectId":1,"day":"Monday","startTime":"10:00","endTime":"09:00"}`, 400, "Start time must be before end time"},
		{"teacher busy", http.MethodPost, "/api/schedules",
			`{"programId":1,"subjectId":2,"teacherId":5,"day":"Monday","startTime":"08:30","endTime":"09:30"}`, 409,
			"Teacher is already booked (08:00:00 - 09:00:00)."},
		{"cohort busy", http.MethodPost, "/api/schedules",
			`{"programId":"1","subjectId":"3","day":"Monday","startTime":"10:30","endTime":"11:30"}`, 409,
			"Student batch (Grade 1) is busy with Science (10:00:00 - 11:00:00)."},
		{"break clashes with everyone", http.MethodPost, "/api/schedules",
			`{"programId":1,"day":"Monday","startTime":"10:15","endTime":"10:45","type":"Break"}`, 409,
			"Student batch (Grade 1) is busy with Science (10:00:00 - 11:00:00)."},
		{"different cohort is fine", http.MethodPost, "/api/schedules",
			`{"programId":1,"subjectId":2,"day":"Monday","startTime":"10:30","endTime":"11:30"}`, 201, ""},
		{"touching intervals are fine", http.MethodPost, "/api/schedules",
			`{"programId":1,"subjectId":1,"teacherId":5,"day":"Monday","startTime":"09:00","endTime":"10:00"}`, 201, ""},
		{"editing itself is not a conflict", http.MethodPut, "/api/schedules/11",
			`{"programId":1,"subjectId":1,"day":"Monday","startTime":"10:00","endTime":"11:30"}`, 200, ""},
		{"update missing row", http.MethodPut, "/api/schedules/99",
			`{"programId":1,"subjectId":1,"day":"Tuesday","startTime":"13:00","endTime":"14:00"}`, 404, "Schedule not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				b, _ := io.ReadAll(resp.Body)
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, b)
			}
			if tt.message == "" {
				return
			}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.message {
				t.Fatalf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}

	if got := store.rows[21]; got == nil || got.StartTime.String() != "10:30:00" || got.SubjectID == nil || *got.SubjectID != 2 {
		t.Fatalf("expected created schedule 21, got %+v", got)
	}
}
