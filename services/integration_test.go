package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to TEST_DATABASE_URL when INTEGRATION_TESTS=1.
func openTestDB(t *testing.T) *database.Database {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run against PostgreSQL")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := database.New(gdb, nil)
	t.Cleanup(db.Close)

	if _, err := database.NewMigrator(gdb, database.Migrations).Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestIntegrationMigrationsApplyOnce(t *testing.T) {
	db := openTestDB(t)
	applied, err := database.NewMigrator(db.DB, database.Migrations).Up(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("second run applied %d migrations, want 0", len(applied))
	}
}

func createStudent(t *testing.T, db *database.Database, programID *uint) string {
	t.Helper()
	ctx := context.Background()
	id := fmt.Sprintf("IT-%d", time.Now().UnixNano())
	if err := db.Conn(ctx).Create(&models.Student{ID: id, Name: "Integration Student", ProgramID: programID}).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	t.Cleanup(func() { db.Conn(ctx).Delete(&models.Student{}, "id = ?", id) })
	return id
}

func createProgram(t *testing.T, db *database.Database) models.Program {
	t.Helper()
	program := models.Program{Name: fmt.Sprintf("Integration %d", time.Now().UnixNano())}
	if err := db.Conn(context.Background()).Create(&program).Error; err != nil {
		t.Fatalf("create program: %v", err)
	}
	t.Cleanup(func() { db.Conn(context.Background()).Delete(&models.Program{}, program.ID) })
	return program
}

func createSchedule(t *testing.T, db *database.Database, programID uint) models.Schedule {
	t.Helper()
	schedule := models.Schedule{
		ProgramID: programID,
		DayOfWeek: "Monday",
		StartTime: models.MustTimeOfDay("08:00"),
		EndTime:   models.MustTimeOfDay("09:00"),
		Type:      "Lecture",
	}
	if err := db.Conn(context.Background()).Create(&schedule).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	t.Cleanup(func() { db.Conn(context.Background()).Delete(&models.Schedule{}, schedule.ID) })
	return schedule
}

func TestIntegrationAttendanceMarkIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id := createStudent(t, db, nil)
	t.Cleanup(func() { db.Conn(ctx).Where("student_id = ?", id).Delete(&models.StudentAttendance{}) })

	svc := NewAttendanceService(db)
	date := models.DateOf(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	marks := []AttendanceMark{
		{StudentID: id, Date: date, Status: models.AttendancePresent, Remarks: "bus late"},
		{StudentID: id, Date: date, Status: models.AttendanceAbsent, Remarks: "sick note"},
	}
	for _, m := range marks {
		if _, err := svc.Mark(ctx, m); err != nil {
			t.Fatalf("mark %s: %v", m.Status, err)
		}
	}

	var rows []models.StudentAttendance
	if err := db.Conn(ctx).Where("student_id = ?", id).Find(&rows).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Status != models.AttendanceAbsent || rows[0].Reason != "sick note" {
		t.Fatalf("row = %+v, want the second submission", rows[0])
	}
}

func TestIntegrationSaveClassKeepsLastRecordPerStudent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	program := createProgram(t, db)
	schedule := createSchedule(t, db, program.ID)
	first := createStudent(t, db, nil)
	second := createStudent(t, db, nil)

	svc := NewAttendanceService(db)
	date := models.DateOf(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))
	saved, err := svc.SaveClass(ctx, schedule.ID, date, []ClassAttendanceRecord{
		{StudentID: first, Status: models.AttendancePresent, Remarks: "front row"},
		{StudentID: second, Status: models.AttendancePresent},
		{StudentID: first, Status: models.AttendanceAbsent, Remarks: "left at break"},
	})
	if err != nil {
		t.Fatalf("save with a repeated student: %v", err)
	}
	if saved != 2 {
		t.Fatalf("saved = %d, want 2", saved)
	}

	// A resubmission updates the stored rows in place.
	if _, err := svc.SaveClass(ctx, schedule.ID, date, []ClassAttendanceRecord{
		{StudentID: second, Status: models.AttendanceAbsent, Remarks: "called in"},
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	rows, err := svc.ClassRegister(ctx, schedule.ID, date)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got := map[string]models.ClassAttendance{}
	for _, r := range rows {
		got[r.StudentID] = r
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want one per student", rows)
	}
	if r := got[first]; r.Status != models.AttendanceAbsent || r.Remarks != "left at break" {
		t.Fatalf("first student = %+v, want the later entry", r)
	}
	if r := got[second]; r.Status != models.AttendanceAbsent || r.Remarks != "called in" {
		t.Fatalf("second student = %+v, want the resubmitted entry", r)
	}
}

func TestIntegrationDeleteProgramDetachesDependents(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	program := createProgram(t, db)
	studentID := createStudent(t, db, &program.ID)

	teacher := models.Teacher{EmpID: fmt.Sprintf("EMP-%d", time.Now().UnixNano()), Name: "Integration Teacher", ProgramID: &program.ID, Status: "Active"}
	if err := db.Conn(ctx).Create(&teacher).Error; err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	t.Cleanup(func() { db.Conn(ctx).Delete(&models.Teacher{}, teacher.ID) })

	subject := models.Subject{Name: "Integration Subject", ProgramID: &program.ID}
	if err := db.Conn(ctx).Create(&subject).Error; err != nil {
		t.Fatalf("create subject: %v", err)
	}
	t.Cleanup(func() { db.Conn(ctx).Delete(&models.Subject{}, subject.ID) })
	createSchedule(t, db, program.ID)

	if err := DeleteProgram(ctx, db, program.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var student models.Student
	if err := db.Conn(ctx).First(&student, "id = ?", studentID).Error; err != nil {
		t.Fatalf("student should survive: %v", err)
	}
	if student.ProgramID != nil {
		t.Fatalf("student still points at program %d", *student.ProgramID)
	}
	var reloadedTeacher models.Teacher
	if err := db.Conn(ctx).First(&reloadedTeacher, teacher.ID).Error; err != nil {
		t.Fatalf("teacher should survive: %v", err)
	}
	if reloadedTeacher.ProgramID != nil {
		t.Fatalf("teacher still points at program %d", *reloadedTeacher.ProgramID)
	}
	var reloadedSubject models.Subject
	if err := db.Conn(ctx).First(&reloadedSubject, subject.ID).Error; err != nil {
		t.Fatalf("subject should survive: %v", err)
	}
	if reloadedSubject.ProgramID != nil {
		t.Fatalf("subject still points at program %d", *reloadedSubject.ProgramID)
	}
	var schedules int64
	if err := db.Conn(ctx).Model(&models.Schedule{}).Where("program_id = ?", program.ID).Count(&schedules).Error; err != nil {
		t.Fatalf("count schedules: %v", err)
	}
	if schedules != 0 {
		t.Fatalf("%d schedules remain for the deleted program", schedules)
	}
	if err := DeleteProgram(ctx, db, program.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete = %v, want record not found", err)
	}
}
