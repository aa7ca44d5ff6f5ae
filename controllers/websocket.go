package controllers

import (
	"context"

	"collegeoffice_go/middleware"
	"collegeoffice_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub         *websocket.Hub
	jwt         *middleware.JWTManager
	requireAuth bool
}

func NewWebSocketController(hub *websocket.Hub, jwt *middleware.JWTManager, requireAuth bool) *WebSocketController {
	return &WebSocketController{hub: hub, jwt: jwt, requireAuth: requireAuth}
}

// Upgrade rejects plain HTTP requests to the feed endpoint.
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"message": "Use the WebSocket endpoint: ws://<host>/ws?token=YOUR_JWT",
		})
	}
	return c.Next()
}

// WebSocketHandler authenticates the ?token= query and joins the change feed.
// Anonymous clients are accepted while authentication is not enforced.
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("WebSocket handler panic")
			}
		}()

		username := "guest"
		token := c.Query("token")
		switch {
		case token != "":
			claims, err := wsc.jwt.Parse(context.Background(), token)
			if err != nil {
				logrus.WithError(err).Warn("WebSocket connection rejected: invalid token")
				_ = c.WriteMessage(fiberws.CloseMessage, fiberws.FormatCloseMessage(fiberws.ClosePolicyViolation, "Invalid token"))
				_ = c.Close()
				return
			}
			username = claims.Username
		case wsc.requireAuth:
			logrus.Warn("WebSocket connection rejected: missing token")
			_ = c.WriteMessage(fiberws.CloseMessage, fiberws.FormatCloseMessage(fiberws.ClosePolicyViolation, "Missing token"))
			_ = c.Close()
			return
		}

		logrus.WithField("username", username).Info("WebSocket connection established")
		wsc.hub.ServeFiberWS(c, username)
	})
}

// GetWebSocketStats returns WebSocket connection statistics
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
