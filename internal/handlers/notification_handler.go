package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests.
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	feedSize               int
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifRepo repositories.NotificationRepository, feedSize int) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		feedSize:               feedSize,
	}
}

// RegisterNotificationRoutes registers notification routes.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the newest notifications plus the full unread
// count. The item cap never hides unread notifications from the count.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = h.feedSize
	}

	ctx := c.Request().Context()
	items, err := h.notificationRepository.ListRecent(ctx, uid, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	unreadCount, err := h.notificationRepository.UnreadCount(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": items,
			"unreadCount":   unreadCount,
		},
	})
}

// GetUnreadCount returns the unread notification count.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead flips one notification's read flag. Navigation to the action
// URL is a client-side effect that must proceed whether or not this
// endpoint succeeds; the two are deliberately not coupled.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.notificationRepository.MarkRead(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead flips every unread notification.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAllRead(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
