package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
	appsync "github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/sync"
)

// MessageHandler handles direct-message and thread HTTP requests.
type MessageHandler struct {
	threadRepository repositories.ThreadRepository
	userRepository   repositories.UserRepository
	receipts         *appsync.ReceiptWriter
	pageSize         int
	log              zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(
	threadRepo repositories.ThreadRepository,
	userRepo repositories.UserRepository,
	receipts *appsync.ReceiptWriter,
	pageSize int,
	log zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		threadRepository: threadRepo,
		userRepository:   userRepo,
		receipts:         receipts,
		pageSize:         pageSize,
		log:              log,
	}
}

// RegisterMessageRoutes registers message and thread routes.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages/send", h.SendMessage)
	g.GET("/threads", h.ListThreads)
	g.POST("/threads", h.CreateGroupThread)
	g.GET("/threads/:id/messages", h.ListMessages)
	g.POST("/threads/:id/read", h.MarkThreadRead)
}

// SendMessage sends a direct message, creating the thread on first contact.
// The thread preview update is best-effort: a dropped update means the
// preview lags until the next message, never a failed send.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if (req.ThreadID == "") == (req.ToUserID == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "Exactly one of thread_id and to_user_id is required")
	}

	ctx := c.Request().Context()

	var thread *models.Thread
	var err error
	if req.ToUserID != "" {
		thread, err = h.threadRepository.EnsureDirectThread(ctx, uid, req.ToUserID)
	} else {
		thread, err = h.threadRepository.GetThread(ctx, req.ThreadID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !isMember(thread, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this thread")
	}

	msg, err := h.threadRepository.AddMessage(ctx, thread.ID, &models.Message{
		SenderID: uid,
		Text:     req.Text,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.threadRepository.UpdatePreview(ctx, thread.ID, msg, thread.Members); err != nil {
		h.log.Warn().Err(err).Str("thread_id", thread.ID).Msg("thread preview update dropped")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data": echo.Map{
			"thread":  thread,
			"message": msg,
		},
	})
}

// CreateGroupThread creates a group thread. The caller is always a member,
// whether or not they listed themselves.
func (h *MessageHandler) CreateGroupThread(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateGroupThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	members := req.Members
	if !contains(members, uid) {
		members = append(members, uid)
	}
	if len(members) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "A group thread needs at least one other member")
	}

	thread, err := h.threadRepository.CreateGroupThread(c.Request().Context(), members)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"thread": thread},
	})
}

// ListThreads returns the caller's threads, sorted by recency and enriched
// with counterpart profiles.
func (h *MessageHandler) ListThreads(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	threads, err := h.threadRepository.ListMemberThreads(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	models.SortThreadsByActivity(threads)

	views := make([]models.ThreadView, 0, len(threads))
	for _, t := range threads {
		view := models.ThreadView{Thread: t, UnreadCount: t.UnreadFor(uid)}
		if other, ok := t.Counterpart(uid); ok {
			profile, err := h.userRepository.GetProfile(ctx, other)
			if err != nil {
				profile = models.PlaceholderProfile(other)
			}
			view.Counterpart = profile
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"threads": views},
	})
}

// ListMessages returns a thread's newest messages in chronological order.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	thread, err := h.threadRepository.GetThread(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isMember(thread, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this thread")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 200 {
		limit = h.pageSize
	}

	msgs, err := h.threadRepository.ListMessages(ctx, thread.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"messages": msgs},
	})
}

// MarkThreadRead runs the read-receipt writer for the opened thread.
func (h *MessageHandler) MarkThreadRead(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	thread, err := h.threadRepository.GetThread(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !isMember(thread, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this thread")
	}

	marked, err := h.receipts.MarkThreadRead(ctx, thread.ID, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"marked": marked},
	})
}

func isMember(thread *models.Thread, uid string) bool {
	return contains(thread.Members, uid)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
