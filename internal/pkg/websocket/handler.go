package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/middleware"
)

// Handler upgrades admin requests to the live application feed
type Handler struct {
	hub      *Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Live application feed
// @Description Upgrades to a WebSocket that streams application events as JSON. Browsers may pass the token as ?token=.
// @Tags admin, websocket
// @Security BearerAuth
// @Param token query string false "JWT access token"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /admin/events [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.AbortUnauthorized(c, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		h.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := NewClient(h.hub, conn, user.ID, h.logger)
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", user.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
