package services

import (
	"context"
	"errors"
	"testing"

	"collegeoffice_go/models"
)

type fakeLookup struct {
	years    map[uint]string
	teachers map[uint][]ScheduleSlot
	programs map[uint][]ScheduleSlot
	err      error
}

func (f *fakeLookup) SubjectYear(_ context.Context, id uint) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	y, ok := f.years[id]
	return y, ok, nil
}

func exclude(slots []ScheduleSlot, id uint) []ScheduleSlot {
	var out []ScheduleSlot
	for _, s := range slots {
		if id != 0 && s.ID == id {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (f *fakeLookup) TeacherSlots(_ context.Context, id uint, _ string, excludeID uint) ([]ScheduleSlot, error) {
	return exclude(f.teachers[id], excludeID), f.err
}

func (f *fakeLookup) ProgramSlots(_ context.Context, id uint, _ string, excludeID uint) ([]ScheduleSlot, error) {
	return exclude(f.programs[id], excludeID), f.err
}

func tod(s string) models.TimeOfDay { return models.MustTimeOfDay(s) }

func uintPtr(v uint) *uint { return &v }

func TestNormalizeCohort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grade 1", "1"},
		{"1", "1"},
		{" grade 1 ", "1"},
		{"GRADE10", "10"},
		{"", "general"},
		{"   ", "general"},
		{"Grade", "general"},
		{"General", "general"},
		{"A/L", "a/l"},
	}
	for _, tc := range tests {
		if got := NormalizeCohort(tc.in); got != tc.want {
			t.Fatalf("NormalizeCohort(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d string
		want       bool
	}{
		{"inside", "08:00", "10:00", "08:30", "09:00", true},
		{"partial", "08:00", "09:00", "08:30", "09:30", true},
		{"touching end", "08:00", "09:00", "09:00", "10:00", false},
		{"touching start", "09:00", "10:00", "08:00", "09:00", false},
		{"disjoint", "08:00", "09:00", "13:00", "14:00", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tod(tc.a), tod(tc.b), tod(tc.c), tod(tc.d)); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConflictCheckerTeacher(t *testing.T) {
	lookup := &fakeLookup{
		years: map[uint]string{10: "Grade 1"},
		teachers: map[uint][]ScheduleSlot{
			7: {{ID: 1, StartTime: tod("08:00"), EndTime: tod("09:00"), SubjectName: "Maths", Year: "Grade 2"}},
		},
	}
	cc := NewConflictChecker(lookup)
	ctx := context.Background()

	p := ScheduleProposal{ProgramID: 1, SubjectID: uintPtr(10), TeacherID: uintPtr(7), DayOfWeek: "Monday",
		StartTime: tod("08:30"), EndTime: tod("09:30")}
	conflict, err := cc.Check(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.Kind != ConflictTeacher {
		t.Fatalf("expected teacher conflict, got %+v", conflict)
	}
	if conflict.Reason != "Teacher is already booked (08:00:00 - 09:00:00)." {
		t.Fatalf("unexpected reason %q", conflict.Reason)
	}

	p.StartTime, p.EndTime = tod("09:00"), tod("10:00")
	if conflict, err = cc.Check(ctx, p); err != nil || conflict != nil {
		t.Fatalf("expected adjacent slot to pass, got %+v, %v", conflict, err)
	}

	// Editing the booked row itself must not conflict with its old interval.
	p.StartTime, p.EndTime, p.ExcludeID = tod("08:15"), tod("08:45"), 1
	if conflict, err = cc.Check(ctx, p); err != nil || conflict != nil {
		t.Fatalf("expected edit of same row to pass, got %+v, %v", conflict, err)
	}
}

func TestConflictCheckerCohort(t *testing.T) {
	existing := []ScheduleSlot{
		{ID: 1, StartTime: tod("08:00"), EndTime: tod("09:00"), SubjectName: "Science", Year: "Grade 1"},
		{ID: 2, StartTime: tod("10:00"), EndTime: tod("10:30"), Type: "Break"},
	}
	lookup := &fakeLookup{
		years:    map[uint]string{10: "1", 11: "Grade 2", 12: ""},
		programs: map[uint][]ScheduleSlot{3: existing},
	}
	cc := NewConflictChecker(lookup)

	tests := []struct {
		name       string
		subject    *uint
		start, end string
		wantReason string
	}{
		{"same normalized cohort", uintPtr(10), "08:30", "09:30", "Student batch (Grade 1) is busy with Science (08:00:00 - 09:00:00)."},
		{"different cohort", uintPtr(11), "08:30", "09:30", ""},
		{"proposal is general", uintPtr(12), "08:30", "09:30", "Student batch (Grade 1) is busy with Science (08:00:00 - 09:00:00)."},
		{"no subject is general", nil, "08:30", "09:30", "Student batch (Grade 1) is busy with Science (08:00:00 - 09:00:00)."},
		{"existing general break", uintPtr(11), "10:15", "11:00", "Student batch (General) is busy with Break (10:00:00 - 10:30:00)."},
		{"unknown subject is general", uintPtr(99), "10:15", "11:00", "Student batch (General) is busy with Break (10:00:00 - 10:30:00)."},
		{"no overlap", uintPtr(10), "09:00", "10:00", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conflict, err := cc.Check(context.Background(), ScheduleProposal{
				ProgramID: 3, SubjectID: tc.subject, DayOfWeek: "Monday",
				StartTime: tod(tc.start), EndTime: tod(tc.end),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantReason == "" {
				if conflict != nil {
					t.Fatalf("expected no conflict, got %q", conflict.Reason)
				}
				return
			}
			if conflict == nil || conflict.Kind != ConflictCohort || conflict.Reason != tc.wantReason {
				t.Fatalf("expected %q, got %+v", tc.wantReason, conflict)
			}
		})
	}
}

func TestConflictCheckerLookupError(t *testing.T) {
	boom := errors.New("boom")
	cc := NewConflictChecker(&fakeLookup{err: boom})
	_, err := cc.Check(context.Background(), ScheduleProposal{
		ProgramID: 1, SubjectID: uintPtr(1), StartTime: tod("08:00"), EndTime: tod("09:00"),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}
