package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestStudentWorkbook(t *testing.T) {
	f, err := StudentWorkbook([]StudentExportRow{
		{ID: "ST-001", Name: "Amal Perera", Program: "A/L Science", CurrentYear: "Grade 12", Status: "Active"},
		{ID: "ST-002", Name: "Nimal Silva", Status: "Left"},
	})
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	r, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer r.Close()

	if sheets := r.GetSheetList(); len(sheets) != 1 || sheets[0] != "Students" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	cases := map[string]string{
		"A1": "Index Number",
		"A2": "ST-001",
		"C2": "A/L Science",
		"D2": "Grade 12",
		"B3": "Nimal Silva",
		"F3": "Left",
	}
	for cell, want := range cases {
		got, err := r.GetCellValue("Students", cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestAttendanceWorkbookRows(t *testing.T) {
	f, err := AttendanceWorkbook([]AttendanceExportRow{
		{Date: "2025-01-10", Kind: "Student", PersonID: "ST-001", Name: "Amal", Status: "Absent", Reason: "sick"},
		{Date: "2025-01-10", Kind: "Teacher", PersonID: "EMP-7", Name: "Kumari", Status: "Present"},
	})
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][6] != "sick" || rows[2][1] != "Teacher" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	if start.String() != "2025-01-01" || end.String() != "2025-01-31" {
		t.Fatalf("unexpected range %s..%s", start, end)
	}
	if _, _, err := parseRange("2025-02-01", "2025-01-01"); err == nil {
		t.Fatalf("expected inverted range error")
	}
	if _, _, err := parseRange("not-a-date", ""); err == nil {
		t.Fatalf("expected parse error")
	}
	start, end, err = parseRange("", "")
	if err != nil || start.Day() != 1 || end.Before(start.Time) {
		t.Fatalf("unexpected default range %s..%s (%v)", start, end, err)
	}
}

func TestAverageRate(t *testing.T) {
	tests := []struct {
		present, absent int64
		want            int
	}{
		{0, 0, 0},
		{1, 2, 33},
		{2, 1, 67},
		{10, 0, 100},
	}
	for _, tt := range tests {
		if got := AverageRate(tt.present, tt.absent); got != tt.want {
			t.Fatalf("AverageRate(%d, %d) = %d, want %d", tt.present, tt.absent, got, tt.want)
		}
	}
}

func TestMarkAttendanceValidation(t *testing.T) {
	svc := NewAttendanceService(nil)
	d := mustDate(t, "2025-01-10")

	if _, err := svc.Mark(context.Background(), AttendanceMark{StudentID: "ST-1", Date: d}); !errors.Is(err, ErrAttendanceDateStatus) {
		t.Fatalf("expected date/status error, got %v", err)
	}
	if _, err := svc.Mark(context.Background(), AttendanceMark{Date: d, Status: "Present"}); !errors.Is(err, ErrAttendanceSubject) {
		t.Fatalf("expected subject error, got %v", err)
	}
}
