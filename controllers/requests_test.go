package controllers

import (
	"net/http"
	"testing"
	"time"

	"collegeoffice_go/utils"
)

// These paths reject the request before any storage is touched.
func TestRejectsIncompleteRequests(t *testing.T) {
	app := newTestApp()
	calendar := NewCalendarController(nil)
	attendance := NewAttendanceController(nil, nil)
	sessions := NewSessionController(nil)
	sessions.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	app.Post("/calendar/events", calendar.CreateEvent)
	app.Get("/attendance", attendance.GetAttendance)
	app.Get("/attendance/class", attendance.GetClassAttendance)
	app.Get("/sessions", sessions.GetSessions)
	app.Put("/sessions", sessions.SetSessionStatus)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
	}{
		{"event without title", http.MethodPost, "/calendar/events", `{"date":"2026-03-01"}`, "Title and Date are required"},
		{"event without date", http.MethodPost, "/calendar/events", `{"title":"Sports meet"}`, "Title and Date are required"},
		{"event with bad date", http.MethodPost, "/calendar/events", `{"title":"Sports meet","date":"01/03/2026"}`, "Invalid date"},
		{"register without date", http.MethodGet, "/attendance", "", "Date is required"},
		{"class register without schedule", http.MethodGet, "/attendance/class?date=2026-03-01", "", "scheduleId is required"},
		{"inverted session range", http.MethodGet, "/sessions?from=2026-03-05&to=2026-03-01", "", "from must not be after to"},
		{"session bad from", http.MethodGet, "/sessions?from=yesterday", "", "Invalid from date"},
		{"session status bad date", http.MethodPut, "/sessions", `{"scheduleId":3,"date":"soon","status":"Completed"}`, "Invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Message string `json:"message"`
			}
			if got := doJSON(t, app, tt.method, tt.path, tt.body, &body); got != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", got)
			}
			if body.Message != tt.message {
				t.Fatalf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestExamRequestInput(t *testing.T) {
	req := ExamRequest{
		Title:         "Term test",
		ProgramIDAlt:  4,
		SubjectID:     9,
		SubjectIDAlt:  2,
		ExamDate:      "2026-04-02",
		StartTime:     "09:00",
		EndTime:       "not a time",
		StudentIDsAlt: []utils.FlexString{"ST-1", "", "ST-2"},
		Parts: []ExamPartRequest{
			{Date: "2026-04-02", StartTime: "09:00", EndTime: "11:00", Venue: "Hall A"},
			{Date: ""},
			{Date: "2026-04-03", Venue: "Hall B"},
		},
	}
	in := req.input()

	if in.ProgramID == nil || *in.ProgramID != 4 {
		t.Fatalf("program id = %v, want 4 from the snake_case key", in.ProgramID)
	}
	if in.SubjectID == nil || *in.SubjectID != 9 {
		t.Fatalf("subject id = %v, want the camelCase value 9", in.SubjectID)
	}
	if in.SupervisorID != nil {
		t.Fatalf("supervisor id = %v, want nil", *in.SupervisorID)
	}
	if in.ExamDate == nil || in.ExamDate.String() != "2026-04-02" {
		t.Fatalf("exam date = %v", in.ExamDate)
	}
	if in.StartTime == nil || in.EndTime != nil {
		t.Fatalf("times = %v / %v, want start only", in.StartTime, in.EndTime)
	}
	if len(in.StudentIDs) != 2 || in.StudentIDs[0] != "ST-1" || in.StudentIDs[1] != "ST-2" {
		t.Fatalf("student ids = %v", in.StudentIDs)
	}
	if len(in.Parts) != 2 {
		t.Fatalf("parts = %d, want 2 dated parts", len(in.Parts))
	}
	if in.Parts[1].PartNo != 3 || in.Parts[1].Venue != "Hall B" {
		t.Fatalf("second part = %+v", in.Parts[1])
	}
}

func TestProgramRequestFallsBackToCategory(t *testing.T) {
	p := ProgramRequest{Name: "  A/L Science ", Category: "Advanced Level"}.program()
	if p.Name != "A/L Science" || p.Type != "Advanced Level" {
		t.Fatalf("program = %+v", p)
	}
	p = ProgramRequest{Name: "Grade 1-5", Type: "Primary", Category: "Other"}.program()
	if p.Type != "Primary" {
		t.Fatalf("type = %q, want Primary", p.Type)
	}
}
