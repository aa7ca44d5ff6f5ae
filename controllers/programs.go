package controllers

import (
	"strings"

	"collegeoffice_go/database"
	"collegeoffice_go/models"
	"collegeoffice_go/services"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgramController struct {
	db *database.Database
}

func NewProgramController(db *database.Database) *ProgramController {
	return &ProgramController{db: db}
}

// ProgramRequest accepts both the create and the edit form of the front-end.
type ProgramRequest struct {
	Name     string   `json:"name" validate:"required"`
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Duration string   `json:"duration"`
	Fee      *float64 `json:"fee"`
	Head     string   `json:"head"`
}

func (r ProgramRequest) program() models.Program {
	kind := r.Type
	if kind == "" {
		kind = r.Category
	}
	return models.Program{
		Name:          strings.TrimSpace(r.Name),
		Type:          kind,
		Category:      r.Category,
		Duration:      r.Duration,
		Fees:          r.Fee,
		HeadOfProgram: r.Head,
	}
}

func (pc *ProgramController) GetPrograms(c *fiber.Ctx) error {
	programs := []models.Program{}
	if err := pc.db.Conn(c.UserContext()).Order("id ASC").Find(&programs).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(programs)
}

func (pc *ProgramController) CreateProgram(c *fiber.Ctx) error {
	var req ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	program := req.program()
	if err := pc.db.Conn(c.UserContext()).Create(&program).Error; err != nil {
		return dbError(c, err, "Program not found")
	}
	return c.Status(fiber.StatusCreated).JSON(program)
}

func (pc *ProgramController) UpdateProgram(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	program := req.program()
	res := pc.db.Conn(c.UserContext()).Model(&models.Program{}).Where("id = ?", id).
		Select("name", "type", "duration", "fees", "head_of_program").Updates(&program)
	if res.Error != nil {
		return dbError(c, res.Error, "Program not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Program not found")
	}
	if err := pc.db.Conn(c.UserContext()).First(&program, id).Error; err != nil {
		return dbError(c, err, "Program not found")
	}
	return c.JSON(program)
}

// DeleteProgram detaches students, teachers and subjects, drops the
// program's schedules and then the program itself.
func (pc *ProgramController) DeleteProgram(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := services.DeleteProgram(c.UserContext(), pc.db, id); err != nil {
		return dbError(c, err, "Program not found")
	}
	return c.JSON(fiber.Map{"message": "Program deleted successfully"})
}

type SubjectController struct {
	db *gorm.DB
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{db: db}
}

type SubjectRequest struct {
	Name      string           `json:"name" validate:"required"`
	ProgramID utils.FlexID     `json:"programId"`
	Year      utils.FlexString `json:"year"`
	TeacherID utils.FlexID     `json:"teacherId"`
}

func (r SubjectRequest) subject() models.Subject {
	return models.Subject{
		Name:      strings.TrimSpace(r.Name),
		ProgramID: r.ProgramID.Ptr(),
		Year:      strings.TrimSpace(r.Year.String()),
		TeacherID: r.TeacherID.Ptr(),
	}
}

// GetSubjects lists subjects, optionally for one program.
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	q := sc.db.WithContext(c.UserContext()).Order("id ASC")
	if p := c.Query("programId"); p != "" && p != "All" {
		id, err := utils.ParseOptionalUint(p)
		if err != nil {
			return badRequest(c, "Invalid programId")
		}
		if id != nil {
			q = q.Where("program_id = ?", *id)
		}
	}
	subjects := []models.Subject{}
	if err := q.Find(&subjects).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(subjects)
}

func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	subject := req.subject()
	if err := sc.db.WithContext(c.UserContext()).Create(&subject).Error; err != nil {
		return dbError(c, err, "Subject not found")
	}
	return c.Status(fiber.StatusCreated).JSON(subject)
}

func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req SubjectRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	subject := req.subject()
	res := sc.db.WithContext(c.UserContext()).Model(&models.Subject{}).Where("id = ?", id).
		Select("name", "program_id", "year", "teacher_id").Updates(&subject)
	if res.Error != nil {
		return dbError(c, res.Error, "Subject not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Subject not found")
	}
	subject.ID = id
	return c.JSON(subject)
}

func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := sc.db.WithContext(c.UserContext()).Delete(&models.Subject{}, id).Error; err != nil {
		return dbError(c, err, "Subject not found")
	}
	return c.JSON(fiber.Map{"message": "Subject deleted"})
}
