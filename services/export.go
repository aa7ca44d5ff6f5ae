package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StudentExportRow struct {
	ID            string
	Name          string
	Program       string
	CurrentYear   string
	SessionYear   string
	Status        string
	ContactNumber string
	GuardianName  string
	GuardianPhone string
	City          string
}

var (
	studentHeaders    = []string{"Index Number", "Name", "Program", "Year", "Session", "Status", "Contact", "Guardian", "Guardian Phone", "City"}
	attendanceHeaders = []string{"Date", "Type", "ID", "Name", "Program", "Status", "Reason"}
)

// ExportService renders registers as XLSX workbooks.
type ExportService struct {
	db         *database.Database
	attendance *AttendanceService
}

func NewExportService(db *database.Database, attendance *AttendanceService) *ExportService {
	return &ExportService{db: db, attendance: attendance}
}

func (s *ExportService) Students(ctx context.Context, w io.Writer) error {
	var rows []StudentExportRow
	err := s.db.Conn(ctx).Table("students s").
		Select("s.id, s.name, COALESCE(p.name, '') AS program, s.current_year, s.session_year, s.status, " +
			"s.contact_number, s.guardian_name, s.guardian_phone, s.city").
		Joins("LEFT JOIN programs p ON p.id = s.program_id").
		Order("s.id").Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("load students for export: %w", err)
	}
	f, err := StudentWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func (s *ExportService) Attendance(ctx context.Context, from, to string, w io.Writer) error {
	start, end, err := parseRange(from, to)
	if err != nil {
		return err
	}
	rows, err := s.attendance.ExportRows(ctx, start, end)
	if err != nil {
		return err
	}
	f, err := AttendanceWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// StudentWorkbook lays out one header row followed by one row per student.
func StudentWorkbook(rows []StudentExportRow) (*excelize.File, error) {
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, []interface{}{
			r.ID, r.Name, r.Program, r.CurrentYear, r.SessionYear, r.Status,
			r.ContactNumber, r.GuardianName, r.GuardianPhone, r.City,
		})
	}
	return workbook("Students", studentHeaders, values)
}

func AttendanceWorkbook(rows []AttendanceExportRow) (*excelize.File, error) {
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, []interface{}{r.Date, r.Kind, r.PersonID, r.Name, r.ProgramName, r.Status, r.Reason})
	}
	return workbook("Attendance", attendanceHeaders, values)
}

func workbook(sheetName string, headers []string, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, bold)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheetName, "A", lastCol, 18)

	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	return f, nil
}

var ErrInvalidRange = errors.New("invalid date range")

// parseRange defaults to the current month up to today.
func parseRange(from, to string) (models.Date, models.Date, error) {
	today := models.DateOf(time.Now())
	start := models.Date{Time: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)}
	end := today
	var err error
	if from != "" {
		if start, err = models.ParseDate(from); err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
	}
	if to != "" {
		if end, err = models.ParseDate(to); err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
	}
	if end.Before(start.Time) {
		return models.Date{}, models.Date{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end, start)
	}
	return start, end, nil
}
