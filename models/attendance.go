package models

import "time"

const (
	SessionCompleted = "Completed"
	SessionCancelled = "Cancelled"

	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
)

// StudentAttendance is the daily register; one row per student per date.
type StudentAttendance struct {
	BaseModel
	StudentID string `json:"student_id"`
	Date      Date   `json:"date"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

func (StudentAttendance) TableName() string { return "student_attendance" }

// TeacherAttendance is one row per teacher per date.
type TeacherAttendance struct {
	BaseModel
	TeacherID uint       `json:"teacher_id"`
	Date      Date       `json:"date"`
	Status    string     `json:"status"`
	CheckIn   *TimeOfDay `json:"check_in"`
	CheckOut  *TimeOfDay `json:"check_out"`
}

func (TeacherAttendance) TableName() string { return "teacher_attendance" }

// ClassAttendance is per-schedule attendance. Any row for a (schedule, date)
// implies the class was held.
type ClassAttendance struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ScheduleID uint   `json:"schedule_id"`
	StudentID  string `json:"student_id"`
	Date       Date   `json:"date"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

func (ClassAttendance) TableName() string { return "class_attendance" }

// ClassSession is an explicit administrator-set status for one class meeting.
type ClassSession struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ScheduleID uint      `json:"schedule_id"`
	Date       Date      `json:"date"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ClassSession) TableName() string { return "class_sessions" }
