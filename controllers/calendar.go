package controllers

import (
	"strings"

	"collegeoffice_go/models"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CalendarController struct {
	db *gorm.DB
}

func NewCalendarController(db *gorm.DB) *CalendarController {
	return &CalendarController{db: db}
}

// CalendarEventView is the shape the calendar widget renders.
type CalendarEventView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Day         int    `json:"day"`
}

type CalendarEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

const defaultEventType = "success"

func (cc *CalendarController) GetEvents(c *fiber.Ctx) error {
	var events []models.CalendarEvent
	if err := cc.db.WithContext(c.UserContext()).Order("event_date ASC").Find(&events).Error; err != nil {
		return serverError(c, err)
	}
	views := make([]CalendarEventView, 0, len(events))
	for _, e := range events {
		views = append(views, CalendarEventView{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Type:        e.EventType,
			Date:        e.EventDate.String(),
			Day:         e.EventDate.Day(),
		})
	}
	return c.JSON(views)
}

func (cc *CalendarController) CreateEvent(c *fiber.Ctx) error {
	var req CalendarEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Date) == "" {
		return badRequest(c, "Title and Date are required")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "Invalid date")
	}
	event := models.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		EventDate:   date,
		EventType:   req.Type,
	}
	if event.EventType == "" {
		event.EventType = defaultEventType
	}
	if err := cc.db.WithContext(c.UserContext()).Create(&event).Error; err != nil {
		return dbError(c, err, "Event not found")
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent edits the title, description and type; the date is fixed.
func (cc *CalendarController) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req CalendarEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	res := cc.db.WithContext(c.UserContext()).Model(&models.CalendarEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": req.Title, "description": req.Description, "event_type": req.Type})
	if res.Error != nil {
		return dbError(c, res.Error, "Event not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Event not found")
	}
	var event models.CalendarEvent
	if err := cc.db.WithContext(c.UserContext()).First(&event, id).Error; err != nil {
		return dbError(c, err, "Event not found")
	}
	return c.JSON(event)
}

func (cc *CalendarController) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res := cc.db.WithContext(c.UserContext()).Delete(&models.CalendarEvent{}, id)
	if res.Error != nil {
		return serverError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Event not found")
	}
	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}

type SlotController struct {
	db *gorm.DB
}

func NewSlotController(db *gorm.DB) *SlotController {
	return &SlotController{db: db}
}

type SlotRequest struct {
	Name      string       `json:"name" validate:"required"`
	ProgramID utils.FlexID `json:"programId"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Status    string       `json:"status"`
}

func (r SlotRequest) slot() models.ExaminationSlot {
	return models.ExaminationSlot{
		Name:      strings.TrimSpace(r.Name),
		ProgramID: r.ProgramID.Ptr(),
		StartDate: optionalDate(r.StartDate),
		EndDate:   optionalDate(r.EndDate),
		Status:    r.Status,
	}
}

type slotRow struct {
	models.ExaminationSlot
	ProgramName *string `json:"program_name"`
}

func (sc *SlotController) GetSlots(c *fiber.Ctx) error {
	rows := []slotRow{}
	err := sc.db.WithContext(c.UserContext()).Table("examination_slots s").
		Select("s.*, p.name AS program_name").
		Joins("LEFT JOIN programs p ON s.program_id = p.id").
		Order("s.start_date DESC").Scan(&rows).Error
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(rows)
}

func (sc *SlotController) CreateSlot(c *fiber.Ctx) error {
	var req SlotRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	slot := req.slot()
	if slot.Status == "" {
		slot.Status = models.ExamUpcoming
	}
	if err := sc.db.WithContext(c.UserContext()).Create(&slot).Error; err != nil {
		return dbError(c, err, "Slot not found")
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

func (sc *SlotController) UpdateSlot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req SlotRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	slot := req.slot()
	res := sc.db.WithContext(c.UserContext()).Model(&models.ExaminationSlot{}).Where("id = ?", id).
		Select("name", "program_id", "start_date", "end_date", "status").Updates(&slot)
	if res.Error != nil {
		return dbError(c, res.Error, "Slot not found")
	}
	if res.RowsAffected == 0 {
		return notFound(c, "Slot not found")
	}
	slot.ID = id
	return c.JSON(slot)
}

func (sc *SlotController) DeleteSlot(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := sc.db.WithContext(c.UserContext()).Delete(&models.ExaminationSlot{}, id).Error; err != nil {
		return dbError(c, err, "Slot not found")
	}
	return c.JSON(fiber.Map{"message": "Slot deleted"})
}
