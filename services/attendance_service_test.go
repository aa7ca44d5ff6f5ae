package services

import (
	"reflect"
	"testing"
)

func TestLatestClassRecords(t *testing.T) {
	tests := []struct {
		name string
		in   []ClassAttendanceRecord
		want []ClassAttendanceRecord
	}{
		{
			name: "empty",
			in:   nil,
			want: []ClassAttendanceRecord{},
		},
		{
			name: "distinct students kept in order",
			in:   []ClassAttendanceRecord{{StudentID: "S1", Status: "Present"}, {StudentID: "S2", Status: "Absent"}},
			want: []ClassAttendanceRecord{{StudentID: "S1", Status: "Present"}, {StudentID: "S2", Status: "Absent"}},
		},
		{
			name: "repeat replaces the earlier entry in place",
			in: []ClassAttendanceRecord{
				{StudentID: "S1", Status: "Present", Remarks: "on time"},
				{StudentID: "S2", Status: "Present"},
				{StudentID: " S1 ", Status: "Absent", Remarks: "left early"},
			},
			want: []ClassAttendanceRecord{
				{StudentID: "S1", Status: "Absent", Remarks: "left early"},
				{StudentID: "S2", Status: "Present"},
			},
		},
		{
			name: "blank ids dropped",
			in:   []ClassAttendanceRecord{{StudentID: "  ", Status: "Present"}, {StudentID: "S3", Status: "Present"}},
			want: []ClassAttendanceRecord{{StudentID: "S3", Status: "Present"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatestClassRecords(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("LatestClassRecords() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
