package controllers

import (
	"context"
	"errors"

	"collegeoffice_go/middleware"
	"collegeoffice_go/models"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserStore looks up login accounts.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type gormUserStore struct{ db *gorm.DB }

func NewGormUserStore(db *gorm.DB) UserStore { return &gormUserStore{db: db} }

func (s *gormUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type AuthController struct {
	users UserStore
	jwt   *middleware.JWTManager
}

func NewAuthController(users UserStore, jwt *middleware.JWTManager) *AuthController {
	return &AuthController{users: users, jwt: jwt}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

const invalidLogin = "Invalid Username or Password"

// Login exchanges a username and password for a JWT.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return badRequest(c, invalidLogin)
	}

	user, err := ac.users.FindByUsername(c.UserContext(), req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badRequest(c, invalidLogin)
		}
		return serverError(c, err)
	}
	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		logrus.WithField("username", req.Username).Warn("Failed login attempt")
		return badRequest(c, invalidLogin)
	}

	token, err := ac.jwt.GenerateToken(user)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    fiber.Map{"username": user.Username, "role": user.Role},
	})
}

// Logout revokes the presented token until it expires.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing authorization header"})
	}
	token, _ := c.Locals("token").(string)
	if err := ac.jwt.Revoke(c.UserContext(), token, claims); err != nil {
		logrus.WithError(err).Warn("Failed to blacklist token")
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (ac *AuthController) Profile(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{"id": claims.UserID, "username": claims.Username, "role": claims.Role},
	})
}
