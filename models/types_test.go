package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "hour minute", input: "08:30", want: "08:30:00"},
		{name: "single digit hour", input: "8:05", want: "08:05:00"},
		{name: "with seconds", input: "13:45:10", want: "13:45:10"},
		{name: "fractional seconds", input: "09:15:00.000000", want: "09:15:00"},
		{name: "trailing zone", input: "09:15:00Z", want: "09:15:00"},
		{name: "offset", input: "10:00:00+05:30", want: "10:00:00"},
		{name: "twelve hour", input: "2:30 PM", want: "14:30:00"},
		{name: "padded", input: "  07:00 ", want: "07:00:00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.String())
			}
		})
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, in := range []string{"", "invalid", "25:00", "12:61", "24:00", "24:00:00"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestTimeOfDayBefore(t *testing.T) {
	if !MustTimeOfDay("09:00").Before(MustTimeOfDay("10:00")) {
		t.Fatalf("09:00 should be before 10:00")
	}
	if MustTimeOfDay("10:00").Before(MustTimeOfDay("10:00:00")) {
		t.Fatalf("equal times must not compare as before")
	}
	// "9:00" and "10:00" only sort correctly once normalized.
	if !MustTimeOfDay("9:00").Before(MustTimeOfDay("10:00")) {
		t.Fatalf("9:00 should be before 10:00 after normalization")
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan([]byte("11:20:00")); err != nil || tod.String() != "11:20:00" {
		t.Fatalf("scan bytes: %v %s", err, tod)
	}
	if err := tod.Scan(time.Date(2000, 1, 1, 6, 7, 8, 0, time.UTC)); err != nil || tod.String() != "06:07:08" {
		t.Fatalf("scan time: %v %s", err, tod)
	}
	if err := tod.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	v, _ := MustTimeOfDay("07:30").Value()
	if v != "07:30:00" {
		t.Fatalf("expected driver value 07:30:00, got %v", v)
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	var payload struct {
		Start TimeOfDay `json:"start"`
	}
	if err := json.Unmarshal([]byte(`{"start":"08:00"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"start":"08:00:00"}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-01-10", "2025-01-10"},
		{" 2025-01-10 ", "2025-01-10"},
		{"2025-01-10T00:00:00Z", "2025-01-10"},
		{"2025-01-10T00:00:00.000Z", "2025-01-10"},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.input, err)
		}
		if got.String() != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.input, tc.want, got)
		}
	}
	if _, err := ParseDate("10/01/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestDateJSON(t *testing.T) {
	d := DateOf(time.Date(2025, 3, 4, 22, 10, 0, 0, time.UTC))
	out, err := json.Marshal(d)
	if err != nil || string(out) != `"2025-03-04"` {
		t.Fatalf("marshal: %v %s", err, out)
	}
	var back Date
	if err := json.Unmarshal(out, &back); err != nil || !back.Equal(d.Time) {
		t.Fatalf("unmarshal: %v %s", err, back)
	}
}
