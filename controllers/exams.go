package controllers

import (
	"errors"
	"time"

	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ExamController struct {
	db    *gorm.DB
	exams *services.ExamService
	now   func() time.Time
}

func NewExamController(db *gorm.DB, exams *services.ExamService) *ExamController {
	return &ExamController{db: db, exams: exams, now: time.Now}
}

type ExamPartRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Venue     string `json:"venue"`
}

// ExamRequest takes camelCase keys with snake_case fallbacks.
type ExamRequest struct {
	Title         string             `json:"title"`
	ProgramID     utils.FlexID       `json:"programId"`
	ProgramIDAlt  utils.FlexID       `json:"program_id"`
	SubjectID     utils.FlexID       `json:"subjectId"`
	SubjectIDAlt  utils.FlexID       `json:"subject_id"`
	SupervisorID  utils.FlexID       `json:"supervisorId"`
	SlotID        utils.FlexID       `json:"slotId"`
	Parts         []ExamPartRequest  `json:"parts"`
	StudentIDs    []utils.FlexString `json:"studentIds"`
	StudentIDsAlt []utils.FlexString `json:"student_ids"`
	ExamDate      string             `json:"exam_date"`
	StartTime     string             `json:"start_time"`
	EndTime       string             `json:"end_time"`
	Venue         string             `json:"venue"`
}

func optionalTime(s string) *models.TimeOfDay {
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		return nil
	}
	return &t
}

func firstID(ids ...utils.FlexID) *uint {
	for _, id := range ids {
		if id != 0 {
			return id.Ptr()
		}
	}
	return nil
}

func (r ExamRequest) input() services.ExamInput {
	in := services.ExamInput{
		Title:        r.Title,
		ProgramID:    firstID(r.ProgramID, r.ProgramIDAlt),
		SubjectID:    firstID(r.SubjectID, r.SubjectIDAlt),
		SupervisorID: r.SupervisorID.Ptr(),
		SlotID:       r.SlotID.Ptr(),
		ExamDate:     optionalDate(r.ExamDate),
		StartTime:    optionalTime(r.StartTime),
		EndTime:      optionalTime(r.EndTime),
		Venue:        r.Venue,
	}
	for i, p := range r.Parts {
		d := optionalDate(p.Date)
		if d == nil {
			continue
		}
		in.Parts = append(in.Parts, models.ExamPart{
			PartNo:    i + 1,
			Date:      *d,
			StartTime: optionalTime(p.StartTime),
			EndTime:   optionalTime(p.EndTime),
			Venue:     p.Venue,
		})
	}
	ids := r.StudentIDs
	if len(ids) == 0 {
		ids = r.StudentIDsAlt
	}
	for _, id := range ids {
		if s := id.String(); s != "" {
			in.StudentIDs = append(in.StudentIDs, s)
		}
	}
	return in
}

type examRow struct {
	models.Exam
	ProgramName      *string `json:"program_name"`
	SubjectName      *string `json:"subject_name"`
	SupervisorName   *string `json:"supervisor_name"`
	AssignedStudents int64   `json:"assigned_students"`
	PresentStudents  int64   `json:"present_students"`
	AbsentStudents   int64   `json:"absent_students"`
}

const examColumns = "e.*, p.name AS program_name, s.name AS subject_name, t.name AS supervisor_name"

func (ec *ExamController) examQuery(c *fiber.Ctx) *gorm.DB {
	return ec.db.WithContext(c.UserContext()).Table("exams e").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Joins("LEFT JOIN subjects s ON e.subject_id = s.id").
		Joins("LEFT JOIN teachers t ON e.supervisor_id = t.id")
}

// GetExams lists exams with enrolment counts. The status shown follows
// the clock unless the exam was cancelled.
func (ec *ExamController) GetExams(c *fiber.Ctx) error {
	rows := []examRow{}
	err := ec.examQuery(c).
		Select(examColumns+", "+
			"(SELECT COUNT(*) FROM exam_results er WHERE er.exam_id = e.id) AS assigned_students, "+
			"(SELECT COUNT(*) FROM exam_results er WHERE er.exam_id = e.id AND er.status = ?) AS present_students, "+
			"(SELECT COUNT(*) FROM exam_results er WHERE er.exam_id = e.id AND er.status = ?) AS absent_students",
			models.AttendancePresent, models.AttendanceAbsent).
		Order("e.exam_date DESC, e.start_time ASC").Scan(&rows).Error
	if err != nil {
		return serverError(c, err)
	}
	now := ec.now()
	for i := range rows {
		rows[i].Status = services.ExamStatusAt(rows[i].Exam, now)
	}
	return c.JSON(rows)
}

func (ec *ExamController) CreateExam(c *fiber.Ctx) error {
	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	exam, err := ec.exams.Create(c.UserContext(), req.input())
	if err != nil {
		if errors.Is(err, services.ErrExamDateRequired) {
			return badRequest(c, "Exam date is required")
		}
		return dbError(c, err, "Exam not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Exam created successfully", "examId": exam.ID})
}

func (ec *ExamController) UpdateExam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := ec.exams.Update(c.UserContext(), id, req.input()); err != nil {
		return dbError(c, err, "Exam not found")
	}
	return c.JSON(fiber.Map{"message": "Exam updated successfully"})
}

type examStudentRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MarksObtained *float64 `json:"marks_obtained"`
	Grade         string   `json:"grade"`
	Status        string   `json:"status"`
	Remarks       string   `json:"remarks"`
}

func (ec *ExamController) GetExamDetails(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var exams []examRow
	if err := ec.examQuery(c).Select(examColumns).Where("e.id = ?", id).Limit(1).Scan(&exams).Error; err != nil {
		return serverError(c, err)
	}
	if len(exams) == 0 {
		return notFound(c, "Exam not found")
	}
	var parts []models.ExamPart
	if err := ec.db.WithContext(c.UserContext()).Where("exam_id = ?", id).Order("part_no").Find(&parts).Error; err != nil {
		return serverError(c, err)
	}
	exams[0].Parts = parts

	students := []examStudentRow{}
	err = ec.db.WithContext(c.UserContext()).Table("exam_results er").
		Select("st.id, st.name, er.marks_obtained, er.grade, er.status, er.remarks").
		Joins("JOIN students st ON er.student_id = st.id").
		Where("er.exam_id = ?", id).
		Order("st.name ASC").Scan(&students).Error
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"exam": exams[0], "students": students})
}

type ExamResultsRequest struct {
	Results []struct {
		ID            utils.FlexString `json:"id"`
		MarksObtained *float64         `json:"marks_obtained"`
		Grade         string           `json:"grade"`
		Status        string           `json:"status"`
		Remarks       string           `json:"remarks"`
	} `json:"results"`
	Status string `json:"status"`
}

func (ec *ExamController) SaveResults(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req ExamResultsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	results := make([]services.ExamResultInput, 0, len(req.Results))
	for _, r := range req.Results {
		results = append(results, services.ExamResultInput{
			StudentID:     r.ID.String(),
			MarksObtained: r.MarksObtained,
			Grade:         r.Grade,
			Status:        r.Status,
			Remarks:       r.Remarks,
		})
	}
	if err := ec.exams.SaveResults(c.UserContext(), id, results, req.Status); err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Saved"})
}

func (ec *ExamController) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	res := ec.db.WithContext(c.UserContext()).Model(&models.Exam{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		return serverError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Exam not found")
	}
	return c.JSON(fiber.Map{"message": "Status updated"})
}

func (ec *ExamController) DeleteExam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := ec.db.WithContext(c.UserContext()).Delete(&models.Exam{}, id).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}
