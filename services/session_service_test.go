package services

import (
	"context"
	"errors"
	"testing"

	"collegeoffice_go/models"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestReconcileSessionsExplicitWins(t *testing.T) {
	inferred := []SessionKey{
		{ScheduleID: 5, Date: "2025-01-10"},
		{ScheduleID: 5, Date: "2025-01-03T00:00:00Z"},
		{ScheduleID: 2, Date: "2025-01-10"},
	}
	overrides := []models.ClassSession{
		{ScheduleID: 5, Date: mustDate(t, "2025-01-10"), Status: models.SessionCancelled, Notes: "holiday"},
		{ScheduleID: 9, Date: mustDate(t, "2025-01-11"), Status: models.SessionCompleted},
	}

	got := ReconcileSessions(inferred, overrides)
	want := []struct {
		schedule uint
		date     string
		status   string
		source   string
	}{
		{5, "2025-01-03", models.SessionCompleted, SessionSourceAttendance},
		{2, "2025-01-10", models.SessionCompleted, SessionSourceAttendance},
		{5, "2025-01-10", models.SessionCancelled, SessionSourceExplicit},
		{9, "2025-01-11", models.SessionCompleted, SessionSourceExplicit},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sessions, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		g := got[i]
		if g.ScheduleID != w.schedule || g.Date.String() != w.date || g.Status != w.status || g.Source != w.source {
			t.Fatalf("session %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestReconcileSessionsSkipsBadDates(t *testing.T) {
	got := ReconcileSessions([]SessionKey{{ScheduleID: 1, Date: "not-a-date"}}, nil)
	if len(got) != 0 {
		t.Fatalf("expected no sessions, got %+v", got)
	}
}

type fakeSessionSource struct {
	inferred  []SessionKey
	overrides []models.ClassSession
	err       error
	lastRange SessionRange
}

func (f *fakeSessionSource) AttendedSessions(_ context.Context, r SessionRange) ([]SessionKey, error) {
	f.lastRange = r
	return f.inferred, f.err
}

func (f *fakeSessionSource) SessionOverrides(_ context.Context, _ SessionRange) ([]models.ClassSession, error) {
	return f.overrides, nil
}

func TestSessionServiceList(t *testing.T) {
	src := &fakeSessionSource{
		inferred:  []SessionKey{{ScheduleID: 5, Date: "2025-01-10"}},
		overrides: []models.ClassSession{{ScheduleID: 5, Date: mustDate(t, "2025-01-10"), Status: models.SessionCancelled}},
	}
	svc := NewSessionServiceWithSource(nil, src)
	r := SessionRange{From: mustDate(t, "2025-01-01"), To: mustDate(t, "2025-01-31"), ScheduleID: 5}

	got, err := svc.List(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Status != models.SessionCancelled {
		t.Fatalf("expected one cancelled session, got %+v", got)
	}
	if src.lastRange.ScheduleID != 5 {
		t.Fatalf("schedule filter not passed through: %+v", src.lastRange)
	}

	if _, err := svc.List(context.Background(), SessionRange{From: r.To, To: r.From}); err == nil {
		t.Fatalf("expected error for inverted range")
	}

	src.err = errors.New("db down")
	if _, err := svc.List(context.Background(), r); !errors.Is(err, src.err) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestSessionServiceRejectsUnknownStatus(t *testing.T) {
	svc := NewSessionServiceWithSource(nil, &fakeSessionSource{})
	err := svc.SetStatus(context.Background(), &models.ClassSession{ScheduleID: 1, Status: "Maybe"})
	if !errors.Is(err, ErrInvalidSessionStatus) {
		t.Fatalf("expected ErrInvalidSessionStatus, got %v", err)
	}
}
