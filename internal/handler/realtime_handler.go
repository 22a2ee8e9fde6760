package handler

import (
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/service"
	internalWS "quiknote-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeHandler upgrades authenticated requests to the change feed
// websocket.
type RealtimeHandler struct {
	issuer   *serverutils.TokenIssuer
	registry service.WorkspaceRegistry
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewRealtimeHandler(issuer *serverutils.TokenIssuer, registry service.WorkspaceRegistry, hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{issuer: issuer, registry: registry, hub: hub, logger: log}
}

func (h *RealtimeHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/realtime/v1/ws", h.ServeWs)
}

// ServeWs takes the token from ?token= (browsers cannot set headers on a
// websocket) or the Authorization header.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := serverutils.BearerToken(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	claims, err := h.issuer.Parse(tokenStr)
	if err != nil {
		h.logger.Warn("RealtimeHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	ws, err := h.registry.Get(c.Context(), claims.SessionId)
	if err != nil {
		return err
	}
	userID := ws.UserID()
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Session ended"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("RealtimeHandler", "Starting websocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("RealtimeHandler", "Websocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}
