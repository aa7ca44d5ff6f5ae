package controllers

import (
	"collegeoffice_go/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// GetSummary returns the office counters and the five newest students.
func (dc *DashboardController) GetSummary(c *fiber.Ctx) error {
	summary, err := dc.dashboard.Summary(c.UserContext())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(summary)
}

type UtilityController struct {
	maintenance *services.MaintenanceService
}

func NewUtilityController(maintenance *services.MaintenanceService) *UtilityController {
	return &UtilityController{maintenance: maintenance}
}

func (uc *UtilityController) ClearTeacherPrograms(c *fiber.Ctx) error {
	names, err := uc.maintenance.ClearTeacherPrograms(c.UserContext())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Cleared assigned programs",
		"count":    len(names),
		"teachers": names,
	})
}

// DedupeTeacherPrograms accepts an optional ?remove= program to drop as well.
func (uc *UtilityController) DedupeTeacherPrograms(c *fiber.Ctx) error {
	var body struct {
		Remove string `json:"remove"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	remove := body.Remove
	if remove == "" {
		remove = c.Query("remove")
	}
	names, err := uc.maintenance.DedupeTeacherPrograms(c.UserContext(), remove)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Teacher programs de-duplicated",
		"count":    len(names),
		"teachers": names,
	})
}
