package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/platform"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// SubscriptionHandler serves subscription, membership, creator directory
// and moderation-report requests. Everything except the legacy Firestore
// records is a thin authenticated passthrough to the externally owned
// platform API; upstream error payloads are surfaced verbatim.
type SubscriptionHandler struct {
	legacyRepository repositories.LegacySubscriptionRepository
	platform         *platform.Client
	log              zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(
	legacyRepo repositories.LegacySubscriptionRepository,
	platformClient *platform.Client,
	log zerolog.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		legacyRepository: legacyRepo,
		platform:         platformClient,
		log:              log,
	}
}

// RegisterSubscriptionRoutes registers subscription and platform glue routes.
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.GET("/legacy/subscriptions", h.ListLegacySubscriptions)
	g.GET("/subscription/details", h.forwardTo(http.MethodGet, "/api/subscription/details"))
	g.POST("/subscription/change-plan", h.ChangePlan)
	g.POST("/subscription/checkout", h.Checkout)
	g.GET("/auth/check-membership", h.forwardTo(http.MethodGet, "/api/auth/check-membership"))
	g.GET("/legacy/creators", h.forwardTo(http.MethodGet, "/api/legacy/creators"))
	g.GET("/legacy/creators/:id", h.ForwardCreator)
	g.POST("/users/:id/report", h.ReportUser)
}

// ListLegacySubscriptions reads the caller's records from the
// legacySubscriptions collection.
func (h *SubscriptionHandler) ListLegacySubscriptions(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	subs, err := h.legacyRepository.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"subscriptions": subs},
	})
}

// ChangePlan validates the payload locally, then forwards it upstream.
func (h *SubscriptionHandler) ChangePlan(c echo.Context) error {
	var req models.ChangePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.forwardJSON(c, http.MethodPost, "/api/subscription/change-plan", req)
}

// Checkout validates the payload locally, then forwards it upstream.
func (h *SubscriptionHandler) Checkout(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.forwardJSON(c, http.MethodPost, "/api/subscription/checkout", req)
}

// ForwardCreator forwards a single-creator lookup.
func (h *SubscriptionHandler) ForwardCreator(c echo.Context) error {
	return h.forward(c, http.MethodGet, "/api/legacy/creators/"+c.Param("id"), nil)
}

// ReportUser validates the report payload locally, then forwards it.
func (h *SubscriptionHandler) ReportUser(c echo.Context) error {
	var req models.ReportUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return h.forwardJSON(c, http.MethodPost, "/api/users/"+c.Param("id")+"/report", req)
}

func (h *SubscriptionHandler) forwardTo(method, path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.forward(c, method, path, nil)
	}
}

func (h *SubscriptionHandler) forwardJSON(c echo.Context, method, path string, req interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.forward(c, method, path, body)
}

// forward relays the request to the platform API with the caller's bearer
// token and mirrors the upstream status and body back. Upstream `error`
// fields reach the user unchanged.
func (h *SubscriptionHandler) forward(c echo.Context, method, path string, body []byte) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if body == nil && c.Request().Body != nil {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
		}
		body = raw
	}

	status, respBody, err := h.platform.Forward(
		c.Request().Context(), method, path, middleware.BearerFromContext(c), body,
	)
	if err != nil {
		h.log.Warn().Err(err).Str("path", path).Msg("platform API call failed")
		return echo.NewHTTPError(http.StatusBadGateway, "Platform API unavailable")
	}

	if len(respBody) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, respBody)
}
