package controllers

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"collegeoffice_go/middleware"
	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentController struct {
	db     *gorm.DB
	export *services.ExportService
}

func NewStudentController(db *gorm.DB, export *services.ExportService) *StudentController {
	return &StudentController{db: db, export: export}
}

// StudentRequest is the multipart (or JSON) body of the admission form.
type StudentRequest struct {
	IndexNumber string `json:"indexNumber" form:"indexNumber"`
	FirstName   string `json:"firstName" form:"firstName"`
	LastName    string `json:"lastName" form:"lastName"`
	Program     string `json:"program" form:"program"`
	ProgramID   string `json:"programId" form:"programId"`
	Session     string `json:"session" form:"session"`
	CurrentYear string `json:"currentYear" form:"currentYear"`
	Status      string `json:"status" form:"status"`
	DOB         string `json:"dob" form:"dob"`
	Gender      string `json:"gender" form:"gender"`
	NIC         string `json:"nic" form:"nic"`
	Email       string `json:"email" form:"email"`
	Phone       string `json:"phone" form:"phone"`
	Address     string `json:"address" form:"address"`
	City        string `json:"city" form:"city"`
	District    string `json:"district" form:"district"`
	Province    string `json:"province" form:"province"`

	GuardianName       string `json:"guardianName" form:"guardianName"`
	GuardianRelation   string `json:"guardianRelation" form:"guardianRelation"`
	GuardianOccupation string `json:"guardianOccupation" form:"guardianOccupation"`
	GuardianPhone      string `json:"guardianPhone" form:"guardianPhone"`
	GuardianEmail      string `json:"guardianEmail" form:"guardianEmail"`

	AdmissionDate           string `json:"admissionDate" form:"admissionDate"`
	PreviousSchoolName      string `json:"previousSchoolName" form:"previousSchoolName"`
	MediumOfStudy           string `json:"mediumOfStudy" form:"mediumOfStudy"`
	LastStudiedGrade        string `json:"lastStudiedGrade" form:"lastStudiedGrade"`
	PreviousSchoolLocation  string `json:"previousSchoolLocation" form:"previousSchoolLocation"`
	ReasonForLeaving        string `json:"reasonForLeaving" form:"reasonForLeaving"`
	PreviousCollege         string `json:"previousCollege" form:"previousCollege"`
	PreviousCollegeLocation string `json:"previousCollegeLocation" form:"previousCollegeLocation"`
	ReasonForLeavingMadrasa string `json:"reasonForLeavingMadrasa" form:"reasonForLeavingMadrasa"`

	GoogleMapLink string `json:"googleMapLink" form:"googleMapLink"`
	Latitude      string `json:"latitude" form:"latitude"`
	Longitude     string `json:"longitude" form:"longitude"`
}

// studentFileColumns maps upload fields to the columns that keep their URLs.
var studentFileColumns = []struct{ field, column string }{
	{"studentPhoto", "photo_url"},
	{"nicFront", "nic_front"},
	{"nicBack", "nic_back"},
	{"studentSignature", "student_signature"},
	{"birthCertificate", "birth_certificate"},
	{"medicalReport", "medical_report"},
	{"guardianNic", "guardian_nic"},
	{"guardianPhoto", "guardian_photo"},
	{"leavingCertificate", "leaving_certificate"},
}

var studentUpdateColumns = []string{
	"name", "program_id", "current_year", "session_year", "status", "contact_number",
	"dob", "gender", "nic", "email", "address", "city", "district", "province",
	"guardian_name", "guardian_relation", "guardian_occupation", "guardian_phone", "guardian_email",
	"admission_date", "previous_school", "medium_of_study", "last_studied_grade",
	"previous_school_location", "reason_for_leaving", "previous_college",
	"previous_college_location", "reason_for_leaving_madrasa",
	"google_map_link", "latitude", "longitude",
}

func optionalDate(s string) *models.Date {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func optionalFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// resolveProgram accepts a numeric id or a name matched case-insensitively
// by containment.
func resolveProgram(ctx context.Context, db *gorm.DB, id, name string) (*uint, error) {
	if pid, err := utils.ParseOptionalUint(id); err == nil && pid != nil {
		return pid, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if pid, err := utils.ParseOptionalUint(name); err == nil && pid != nil {
		return pid, nil
	}
	var program models.Program
	err := db.WithContext(ctx).Select("id").Where("name ILIKE ?", "%"+name+"%").Order("id").Limit(1).Find(&program).Error
	if err != nil {
		return nil, err
	}
	if program.ID == 0 {
		return nil, nil
	}
	return &program.ID, nil
}

// SaveStudent creates or updates a student keyed by index number. Files not
// sent keep their stored URLs.
func (sc *StudentController) SaveStudent(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.IndexNumber) == "" || strings.TrimSpace(req.FirstName) == "" {
		return badRequest(c, "Index number and name are required")
	}

	programID, err := resolveProgram(c.UserContext(), sc.db, req.ProgramID, req.Program)
	if err != nil {
		return serverError(c, err)
	}
	status := req.Status
	if status == "" {
		status = "Active"
	}

	student := models.Student{
		ID:                      strings.TrimSpace(req.IndexNumber),
		Name:                    strings.TrimSpace(req.FirstName + " " + req.LastName),
		ProgramID:               programID,
		CurrentYear:             req.CurrentYear,
		SessionYear:             req.Session,
		Status:                  status,
		ContactNumber:           req.Phone,
		DOB:                     optionalDate(req.DOB),
		Gender:                  req.Gender,
		NIC:                     req.NIC,
		Email:                   req.Email,
		Address:                 req.Address,
		City:                    req.City,
		District:                req.District,
		Province:                req.Province,
		AdmissionDate:           optionalDate(req.AdmissionDate),
		CreatedAt:               time.Now(),
		GuardianName:            req.GuardianName,
		GuardianRelation:        req.GuardianRelation,
		GuardianOccupation:      req.GuardianOccupation,
		GuardianPhone:           req.GuardianPhone,
		GuardianEmail:           req.GuardianEmail,
		PreviousSchool:          req.PreviousSchoolName,
		MediumOfStudy:           req.MediumOfStudy,
		LastStudiedGrade:        req.LastStudiedGrade,
		PreviousSchoolLocation:  req.PreviousSchoolLocation,
		ReasonForLeaving:        req.ReasonForLeaving,
		PreviousCollege:         req.PreviousCollege,
		PreviousCollegeLocation: req.PreviousCollegeLocation,
		ReasonForLeavingMadrasa: req.ReasonForLeavingMadrasa,
		GoogleMapLink:           utils.StringPtr(req.GoogleMapLink),
		Latitude:                optionalFloat(req.Latitude),
		Longitude:               optionalFloat(req.Longitude),

		PhotoURL:           middleware.UploadURL(c, "studentPhoto"),
		NICFront:           middleware.UploadURL(c, "nicFront"),
		NICBack:            middleware.UploadURL(c, "nicBack"),
		StudentSignature:   middleware.UploadURL(c, "studentSignature"),
		BirthCertificate:   middleware.UploadURL(c, "birthCertificate"),
		MedicalReport:      middleware.UploadURL(c, "medicalReport"),
		GuardianNIC:        middleware.UploadURL(c, "guardianNic"),
		GuardianPhoto:      middleware.UploadURL(c, "guardianPhoto"),
		LeavingCertificate: middleware.UploadURL(c, "leavingCertificate"),
	}

	updates := clause.AssignmentColumns(studentUpdateColumns)
	for _, fc := range studentFileColumns {
		updates = append(updates, clause.Assignment{
			Column: clause.Column{Name: fc.column},
			Value:  gorm.Expr("COALESCE(EXCLUDED." + fc.column + ", students." + fc.column + ")"),
		})
	}
	err = sc.db.WithContext(c.UserContext()).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: updates,
	}).Create(&student).Error
	if err != nil {
		return dbError(c, err, "Student not found")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Student details saved successfully"})
}

type studentListRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CurrentYear string  `json:"currentYear"`
	Status      string  `json:"status"`
	Contact     string  `json:"contact"`
	Program     *string `json:"program"`
	Session     string  `json:"session"`
	PhotoURL    *string `json:"photo_url"`
	Guardian    string  `json:"guardian"`
}

// GetStudents lists students newest first.
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	rows := []studentListRow{}
	q := sc.db.WithContext(c.UserContext()).Table("students s").
		Select("s.id, s.name, s.current_year, s.status, s.contact_number AS contact, p.name AS program, " +
			"s.session_year AS session, s.photo_url, s.guardian_name AS guardian").
		Joins("LEFT JOIN programs p ON s.program_id = p.id")
	if p := c.Query("programId"); p != "" && p != "All" {
		q = q.Where("s.program_id = ?", p)
	}
	if st := c.Query("status"); st != "" {
		q = q.Where("s.status = ?", st)
	}
	if err := q.Order("s.created_at DESC").Scan(&rows).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

type studentDetail struct {
	models.Student
	ProgramName     *string `json:"program_name"`
	ProgramDuration *string `json:"program_duration"`
}

func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	var rows []studentDetail
	err := sc.db.WithContext(c.UserContext()).Table("students s").
		Select("s.*, p.name AS program_name, p.duration AS program_duration").
		Joins("LEFT JOIN programs p ON s.program_id = p.id").
		Where("s.id = ?", c.Params("id")).Limit(1).Scan(&rows).Error
	if err != nil {
		return serverError(c, err)
	}
	if len(rows) == 0 {
		return notFound(c, "Student not found")
	}
	return c.JSON(rows[0])
}

func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	res := sc.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).Delete(&models.Student{})
	if res.Error != nil {
		return dbError(c, res.Error, "Student not found")
	}
	return c.JSON(fiber.Map{"message": "Student deleted successfully"})
}

// ExportStudents streams the student register as an XLSX workbook.
func (sc *StudentController) ExportStudents(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := sc.export.Students(c.UserContext(), &buf); err != nil {
		return serverError(c, err)
	}
	fileName := "students_" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(buf.Bytes())
}
