package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"collegeoffice_go/models"
)

func TestExamStatusAt(t *testing.T) {
	date := models.Date{Time: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	start := models.MustTimeOfDay("09:00")
	end := models.MustTimeOfDay("11:00")
	base := models.Exam{ExamDate: &date, StartTime: &start, EndTime: &end, Status: models.ExamUpcoming}
	at := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name string
		exam func() models.Exam
		now  time.Time
		want string
	}{
		{"before start", func() models.Exam { return base }, at(8, 59), models.ExamUpcoming},
		{"at start", func() models.Exam { return base }, at(9, 0), models.ExamOngoing},
		{"during", func() models.Exam { return base }, at(10, 30), models.ExamOngoing},
		{"after end", func() models.Exam { return base }, at(11, 1), models.ExamCompleted},
		{"stored completed but upcoming", func() models.Exam {
			e := base
			e.Status = models.ExamCompleted
			return e
		}, at(7, 0), models.ExamUpcoming},
		{"cancelled never changes", func() models.Exam {
			e := base
			e.Status = models.ExamCancelled
			return e
		}, at(12, 0), models.ExamCancelled},
		{"no date keeps stored", func() models.Exam {
			e := base
			e.ExamDate = nil
			e.Status = "Draft"
			return e
		}, at(12, 0), "Draft"},
		{"default end time", func() models.Exam {
			e := base
			e.EndTime = nil
			return e
		}, at(23, 58), models.ExamOngoing},
		{"default start time", func() models.Exam {
			e := base
			e.StartTime = nil
			return e
		}, at(0, 0), models.ExamOngoing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExamStatusAt(tc.exam(), tc.now); got != tc.want {
				t.Fatalf("ExamStatusAt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExamInputFirstPartWins(t *testing.T) {
	venue := "Hall A"
	d := models.Date{Time: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	start := models.MustTimeOfDay("13:00")
	in := ExamInput{
		Title: "Term test",
		Venue: "ignored",
		Parts: []models.ExamPart{
			{Date: d, StartTime: &start, Venue: venue},
			{Date: models.Date{Time: d.AddDate(0, 0, 1)}, Venue: "Hall B"},
		},
	}
	var e models.Exam
	in.apply(&e)
	if e.ExamDate == nil || e.ExamDate.String() != "2025-05-01" || e.Venue != venue || e.StartTime.String() != "13:00:00" {
		t.Fatalf("first part not mirrored on exam: %+v", e)
	}
}

func TestExamCreateRequiresDate(t *testing.T) {
	svc := NewExamService(nil)
	if _, err := svc.Create(context.Background(), ExamInput{Title: "No date"}); !errors.Is(err, ErrExamDateRequired) {
		t.Fatalf("expected ErrExamDateRequired, got %v", err)
	}
}
