package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/mentions"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/platform"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
)

const mentionFanoutTimeout = 15 * time.Second

// PostHandler handles message-board HTTP requests.
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	platform       *platform.Client
	log            zerolog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	platformClient *platform.Client,
	log zerolog.Logger,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		platform:       platformClient,
		log:            log,
	}
}

// RegisterPostRoutes registers message-board routes.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/message-board/posts", h.CreatePost)
	g.GET("/message-board/posts", h.ListPosts)
	g.GET("/message-board/posts/:id", h.GetPost)
	g.GET("/message-board/posts/:id/comments", h.ListComments)
	g.POST("/message-board/posts/:id/reactions", h.AddReaction)
	g.GET("/message-board/posts/:id/reactions", h.ListReactions)
}

// CreatePost creates a message-board post and fans out mention
// notifications. The fan-out is at-most-once: a failure is logged and
// dropped, never surfaced to the author.
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	authorName := models.PlaceholderDisplayName
	if profile, err := h.userRepository.GetProfile(ctx, uid); err == nil {
		authorName = profile.DisplayName
	}

	post, err := h.postRepository.CreatePost(ctx, &models.Post{
		AuthorID:   uid,
		AuthorName: authorName,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if handles := mentions.Extract(post.Body); len(handles) > 0 {
		h.notifyMentions(middleware.BearerFromContext(c), post, handles)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"post": post},
	})
}

// notifyMentions submits the extracted handles for server-side fan-out
// without blocking the response. Detached from the request context: the
// author navigating away must not cancel the call.
func (h *PostHandler) notifyMentions(bearer string, post *models.Post, handles []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mentionFanoutTimeout)
		defer cancel()

		err := h.platform.NotifyMentions(ctx, bearer, platform.MentionFanout{
			PostID:     post.ID,
			AuthorName: post.AuthorName,
			Mentions:   handles,
		})
		if err != nil {
			h.log.Warn().Err(err).
				Str("post_id", post.ID).
				Strs("mentions", handles).
				Msg("mention notifications dropped")
		}
	}()
}

// ListPosts returns the newest posts.
func (h *PostHandler) ListPosts(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, err := h.postRepository.ListPosts(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
	})
}

// GetPost returns one post.
func (h *PostHandler) GetPost(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"post": post},
	})
}

// ListComments returns a post's comments, oldest first.
func (h *PostHandler) ListComments(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	comments, err := h.postRepository.ListComments(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": comments},
	})
}

// AddReaction records the caller's reaction on a post.
func (h *PostHandler) AddReaction(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req struct {
		Kind string `json:"kind" validate:"required,min=1,max=32"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.postRepository.AddReaction(c.Request().Context(), c.Param("id"), &models.Reaction{
		UserID: uid,
		Kind:   req.Kind,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// ListReactions returns a post's reactions.
func (h *PostHandler) ListReactions(c echo.Context) error {
	uid := middleware.UIDFromContext(c)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reactions, err := h.postRepository.ListReactions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"reactions": reactions},
	})
}
