package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/realtime"
)

// RealtimeHandler issues WebSocket tickets and upgrades connections.
type RealtimeHandler struct {
	hub      *realtime.Hub
	tickets  *realtime.TicketIssuer
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub, tickets *realtime.TicketIssuer, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:     hub,
		tickets: tickets,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin is already handled by the CORS middleware on the
			// REST surface; the upgrade itself is gated by the ticket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterTicketRoute registers the authenticated ticket endpoint.
func (h *RealtimeHandler) RegisterTicketRoute(g *echo.Group) {
	g.GET("/realtime/ticket", h.IssueTicket)
}

// RegisterWebSocketRoute registers the upgrade endpoint. It sits outside
// the auth middleware because browsers cannot send an Authorization header
// on a WS upgrade; the ticket carries the identity instead.
func (h *RealtimeHandler) RegisterWebSocketRoute(e *echo.Echo) {
	e.GET("/ws", h.Connect)
}

// IssueTicket exchanges a verified bearer token for a short-lived WS ticket.
func (h *RealtimeHandler) IssueTicket(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ticket, err := h.tickets.Issue(uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue ticket")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"ticket": ticket},
	})
}

// Connect verifies the ticket and upgrades the connection. Registering the
// first connection for a user starts their sync engine; the engine stops
// when the last connection goes away.
func (h *RealtimeHandler) Connect(c echo.Context) error {
	uid, err := h.tickets.Verify(c.QueryParam("ticket"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ticket")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := realtime.NewClient(h.hub, conn, uid)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}
