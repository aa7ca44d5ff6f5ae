package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"collegeoffice_go/middleware"
	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/storage"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TeacherController struct {
	db    *gorm.DB
	store storage.Store
}

func NewTeacherController(db *gorm.DB, store storage.Store) *TeacherController {
	return &TeacherController{db: db, store: store}
}

type TeacherRequest struct {
	EmpID              string            `json:"empId" form:"empId"`
	Name               string            `json:"name" form:"name"`
	Program            utils.FlexString  `json:"program" form:"program"`
	TeacherCategory    string            `json:"teacherCategory" form:"teacherCategory"`
	AssignedPrograms   utils.FlexStrings `json:"assignedPrograms" form:"-"`
	Designation        string            `json:"designation" form:"designation"`
	Email              string            `json:"email" form:"email"`
	Phone              string            `json:"phone" form:"phone"`
	Whatsapp           string            `json:"whatsapp" form:"whatsapp"`
	Address            string            `json:"address" form:"address"`
	NIC                string            `json:"nic" form:"nic"`
	DOB                string            `json:"dob" form:"dob"`
	Gender             string            `json:"gender" form:"gender"`
	MaritalStatus      string            `json:"maritalStatus" form:"maritalStatus"`
	JoiningDate        string            `json:"joiningDate" form:"joiningDate"`
	Qualification      string            `json:"qualification" form:"qualification"`
	DegreeInstitute    string            `json:"degreeInstitute" form:"degreeInstitute"`
	GradYear           utils.FlexString  `json:"gradYear" form:"gradYear"`
	AppointmentType    string            `json:"appointmentType" form:"appointmentType"`
	PreviousExperience string            `json:"previousExperience" form:"previousExperience"`
	Department         string            `json:"department" form:"department"`
	BasicSalary        utils.FlexString  `json:"basicSalary" form:"basicSalary"`
	BankName           string            `json:"bankName" form:"bankName"`
	AccountNumber      string            `json:"accountNumber" form:"accountNumber"`
	Status             string            `json:"status" form:"status"`
}

// parseTeacher reads the body; multipart forms may repeat assignedPrograms
// or send it as one comma separated value.
func parseTeacher(c *fiber.Ctx) (*TeacherRequest, error) {
	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if form, err := c.MultipartForm(); err == nil {
		var raw []string
		raw = append(raw, form.Value["assignedPrograms"]...)
		raw = append(raw, form.Value["assignedPrograms[]"]...)
		req.AssignedPrograms = utils.SplitPrograms(raw...)
	}
	return &req, nil
}

var teacherUpdateColumns = []string{
	"emp_id", "name", "program_id", "teacher_category", "assigned_programs", "designation",
	"email", "phone", "whatsapp", "address", "nic", "dob", "gender", "marital_status",
	"joining_date", "qualification", "degree_institute", "grad_year", "appointment_type",
	"previous_experience", "department", "basic_salary", "bank_name", "account_number", "status",
}

func (r *TeacherRequest) teacher(programID *uint) models.Teacher {
	salary, _ := strconv.ParseFloat(strings.TrimSpace(r.BasicSalary.String()), 64)
	status := r.Status
	if status == "" {
		status = "Active"
	}
	return models.Teacher{
		EmpID:              strings.TrimSpace(r.EmpID),
		Name:               strings.TrimSpace(r.Name),
		ProgramID:          programID,
		TeacherCategory:    r.TeacherCategory,
		AssignedPrograms:   pq.StringArray(utils.CleanPrograms(r.AssignedPrograms, "")),
		Designation:        r.Designation,
		Email:              r.Email,
		Phone:              r.Phone,
		Whatsapp:           r.Whatsapp,
		Address:            r.Address,
		NIC:                r.NIC,
		DOB:                optionalDate(r.DOB),
		Gender:             r.Gender,
		MaritalStatus:      r.MaritalStatus,
		JoiningDate:        optionalDate(r.JoiningDate),
		Qualification:      r.Qualification,
		DegreeInstitute:    r.DegreeInstitute,
		GradYear:           r.GradYear.String(),
		AppointmentType:    r.AppointmentType,
		PreviousExperience: r.PreviousExperience,
		Department:         r.Department,
		BasicSalary:        salary,
		BankName:           r.BankName,
		AccountNumber:      r.AccountNumber,
		Status:             status,
	}
}

// attachFiles copies uploaded URLs onto t and returns the columns they
// fill. qualification and certificates share certificates_url; qualification
// wins.
func attachFiles(c *fiber.Ctx, t *models.Teacher) []string {
	targets := []struct {
		field  string
		column string
		dst    **string
	}{
		{"profilePhoto", "photo_url", &t.PhotoURL},
		{"cvFile", "cv_url", &t.CVURL},
		{"certificates", "certificates_url", &t.CertificatesURL},
		{"qualification", "certificates_url", &t.CertificatesURL},
		{"nicCopy", "nic_copy_url", &t.NICCopyURL},
		{"nicFront", "nic_front_url", &t.NICFrontURL},
		{"nicBack", "nic_back_url", &t.NICBackURL},
		{"birthCertificate", "birth_certificate_url", &t.BirthCertificateURL},
	}
	var cols []string
	seen := map[string]bool{}
	for _, tg := range targets {
		url := middleware.UploadURL(c, tg.field)
		if url == nil {
			continue
		}
		*tg.dst = url
		if !seen[tg.column] {
			seen[tg.column] = true
			cols = append(cols, tg.column)
		}
	}
	return cols
}

type teacherRow struct {
	models.Teacher
	ProgramName *string `json:"program_name"`
}

func (tc *TeacherController) teachers(c *fiber.Ctx) *gorm.DB {
	return tc.db.WithContext(c.UserContext()).Table("teachers t").
		Select("t.*, p.name AS program_name").
		Joins("LEFT JOIN programs p ON t.program_id = p.id")
}

func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	rows := []teacherRow{}
	if err := tc.teachers(c).Order("t.id ASC").Scan(&rows).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var rows []teacherRow
	if err := tc.teachers(c).Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return serverError(c, err)
	}
	if len(rows) == 0 {
		return notFound(c, "Teacher not found")
	}
	return c.JSON(rows[0])
}

// GetTeacherStats reports subjects taught, students in the teacher's
// program and the teacher's own attendance rate.
func (tc *TeacherController) GetTeacherStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	db := tc.db.WithContext(c.UserContext())

	var teacher models.Teacher
	if err := db.Select("id", "program_id").First(&teacher, id).Error; err != nil {
		return dbError(c, err, "Teacher not found")
	}
	var classes, students int64
	if err := db.Model(&models.Subject{}).Where("teacher_id = ?", id).Count(&classes).Error; err != nil {
		return serverError(c, err)
	}
	if teacher.ProgramID != nil {
		if err := db.Model(&models.Student{}).Where("program_id = ?", *teacher.ProgramID).Count(&students).Error; err != nil {
			return serverError(c, err)
		}
	}
	var att struct{ Present, Absent int64 }
	err = db.Model(&models.TeacherAttendance{}).Where("teacher_id = ?", id).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS present, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS absent",
			models.AttendancePresent, models.AttendanceAbsent).
		Scan(&att).Error
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(fiber.Map{
		"classesAssigned": classes,
		"totalStudents":   students,
		"avgAttendance":   fmt.Sprintf("%d%%", services.AverageRate(att.Present, att.Absent)),
	})
}

func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	req, err := parseTeacher(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.EmpID) == "" || strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "Employee ID and name are required")
	}
	programID, err := resolveProgram(c.UserContext(), tc.db, "", req.Program.String())
	if err != nil {
		return serverError(c, err)
	}
	teacher := req.teacher(programID)
	attachFiles(c, &teacher)
	if err := tc.db.WithContext(c.UserContext()).Create(&teacher).Error; err != nil {
		return dbError(c, err, "Teacher not found")
	}
	return c.Status(fiber.StatusCreated).JSON(teacher)
}

// UpdateTeacher rewrites the profile; file columns change only when a new
// file was uploaded.
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	req, err := parseTeacher(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	programID, err := resolveProgram(c.UserContext(), tc.db, "", req.Program.String())
	if err != nil {
		return serverError(c, err)
	}
	teacher := req.teacher(programID)
	cols := teacherUpdateColumns
	if teacher.EmpID == "" {
		cols = cols[1:]
	}
	cols = append(cols[:len(cols):len(cols)], attachFiles(c, &teacher)...)

	res := tc.db.WithContext(c.UserContext()).Model(&models.Teacher{}).Where("id = ?", id).
		Select(cols).Updates(&teacher)
	if res.Error != nil {
		return dbError(c, res.Error, "Teacher not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Teacher not found")
	}
	var updated models.Teacher
	if err := tc.db.WithContext(c.UserContext()).First(&updated, id).Error; err != nil {
		return dbError(c, err, "Teacher not found")
	}
	return c.JSON(updated)
}

func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res := tc.db.WithContext(c.UserContext()).Delete(&models.Teacher{}, id)
	if res.Error != nil {
		return dbError(c, res.Error, "Teacher not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Teacher not found")
	}
	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}

func (tc *TeacherController) GetDocuments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	docs := []models.TeacherDocument{}
	if err := tc.db.WithContext(c.UserContext()).Where("teacher_id = ?", id).
		Order("created_at DESC").Find(&docs).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(docs)
}

func (tc *TeacherController) UploadDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	file, ok := middleware.Uploads(c)["document"]
	if !ok {
		return badRequest(c, "No file uploaded")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = file.OriginalName
	}
	doc := models.TeacherDocument{
		TeacherID: id,
		Name:      name,
		FileURL:   file.URL,
		FileSize:  utils.FormatFileSize(file.Size),
	}
	if err := tc.db.WithContext(c.UserContext()).Create(&doc).Error; err != nil {
		return dbError(c, err, "Teacher not found")
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// teacherDocument scopes a document lookup to the teacher in the route.
func teacherDocument(db *gorm.DB, teacherID, docID uint) *gorm.DB {
	return db.Model(&models.TeacherDocument{}).Where("id = ? AND teacher_id = ?", docID, teacherID)
}

func (tc *TeacherController) UpdateDocument(c *fiber.Ctx) error {
	teacherID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if err := bindJSON(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	res := teacherDocument(tc.db.WithContext(c.UserContext()), teacherID, docID).Update("name", body.Name)
	if res.Error != nil {
		return serverError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Document not found")
	}
	var doc models.TeacherDocument
	if err := teacherDocument(tc.db.WithContext(c.UserContext()), teacherID, docID).First(&doc).Error; err != nil {
		return dbError(c, err, "Document not found")
	}
	return c.JSON(doc)
}

// DeleteDocument removes the row and then the stored file.
func (tc *TeacherController) DeleteDocument(c *fiber.Ctx) error {
	teacherID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	docID, err := parseID(c, "docId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var doc models.TeacherDocument
	if err := teacherDocument(tc.db.WithContext(c.UserContext()), teacherID, docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Document not found")
		}
		return serverError(c, err)
	}
	if err := tc.db.WithContext(c.UserContext()).Delete(&doc).Error; err != nil {
		return serverError(c, err)
	}
	if tc.store != nil && doc.FileURL != "" {
		if err := tc.store.Delete(c.UserContext(), doc.FileURL); err != nil {
			logrus.WithError(err).WithField("file_url", doc.FileURL).Warn("Failed to delete document file")
		}
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}
