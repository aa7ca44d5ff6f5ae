package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"collegeoffice_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

const blacklistPrefix = "blacklist:jwt:"

var ErrTokenRevoked = errors.New("token revoked")

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens. Revoked tokens are kept in
// Redis until they expire; without Redis logout is client-side only.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	redis  *redis.Client
}

func NewJWTManager(secret string, expiry time.Duration, rc *redis.Client) *JWTManager {
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), expiry: expiry, redis: rc}
}

// GenerateToken creates a new JWT token for a user
func (m *JWTManager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates signature, expiry and the revocation list.
func (m *JWTManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if m.redis != nil {
		n, err := m.redis.Exists(ctx, blacklistPrefix+tokenString).Result()
		if err != nil {
			logrus.WithError(err).Warn("Token blacklist lookup failed")
		} else if n > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke blacklists the token for the rest of its lifetime.
func (m *JWTManager) Revoke(ctx context.Context, tokenString string, claims *Claims) error {
	if m.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, blacklistPrefix+tokenString, "1", ttl).Err()
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("Missing authorization header")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", errors.New("Invalid authorization header format")
	}
	return tokenString, nil
}

// Middleware rejects requests without a valid token.
func (m *JWTManager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		claims, err := m.Parse(c.UserContext(), tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, ErrTokenRevoked) {
				msg = "Token has been revoked"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msg})
		}
		c.Locals("claims", claims)
		c.Locals("token", tokenString)
		return c.Next()
	}
}

// Optional attaches claims when a valid token is present and never rejects.
func (m *JWTManager) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, err := bearerToken(c); err == nil {
			if claims, err := m.Parse(c.UserContext(), tokenString); err == nil {
				c.Locals("claims", claims)
				c.Locals("token", tokenString)
			}
		}
		return c.Next()
	}
}

// Protect enforces tokens when required is set.
func (m *JWTManager) Protect(required bool) fiber.Handler {
	if required {
		return m.Middleware()
	}
	return m.Optional()
}

// RequireRole middleware checks if user has required role
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Missing user claims",
			})
		}
		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient permissions",
		})
	}
}

// GetCurrentClaims returns the current JWT claims
func GetCurrentClaims(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals("claims").(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Claims not found in context")
	}
	return claims, nil
}
