package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var validate = validator.New()

// sqlState extracts the SQLSTATE from either PostgreSQL driver's error type.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// mapDBError turns a storage error into a status code and client message.
func mapDBError(err error, notFound string) (int, string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound, notFound
	}
	switch sqlState(err) {
	case "23505":
		return fiber.StatusConflict, "Duplicate record"
	case "23503":
		return fiber.StatusBadRequest, "Referenced record not found"
	case "23514", "22007", "22008", "22P02":
		return fiber.StatusBadRequest, "Invalid value"
	}
	return fiber.StatusInternalServerError, "Server Error"
}

func dbError(c *fiber.Ctx, err error, notFound string) error {
	code, msg := mapDBError(err, notFound)
	if code == fiber.StatusInternalServerError {
		return serverError(c, err)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}

func serverError(c *fiber.Ctx, err error) error {
	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
	}).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": msg})
}

// validationMessage renders the first failed rule of a validator error.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return "Invalid request body"
}

// bindJSON parses and validates the body into dst.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errors.New("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("Invalid %s", name)
	}
	return uint(id), nil
}
