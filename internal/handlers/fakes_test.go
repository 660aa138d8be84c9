package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/validators"
)

// newRequestContext builds an echo context for a handler test, authenticated
// as uid when uid is not empty.
func newRequestContext(t *testing.T, method, target, body, uid string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set(middleware.ContextKeyUID, uid)
		c.Set(middleware.ContextKeyBearer, "id-token")
	}
	return c, rec
}

// stubThreadRepo backs the message handler tests with canned threads.
type stubThreadRepo struct {
	threads map[string]*models.Thread
	unread  []models.Message

	addedMessages  []*models.Message
	previewErr     error
	previewThreads []string
	unreadWrites   map[string]int64
}

func newStubThreadRepo() *stubThreadRepo {
	return &stubThreadRepo{
		threads:      map[string]*models.Thread{},
		unreadWrites: map[string]int64{},
	}
}

func (s *stubThreadRepo) WatchMemberThreads(ctx context.Context, uid string) (<-chan []models.Thread, <-chan error) {
	return nil, nil
}

func (s *stubThreadRepo) ListMemberThreads(ctx context.Context, uid string) ([]models.Thread, error) {
	var out []models.Thread
	for _, t := range s.threads {
		for _, m := range t.Members {
			if m == uid {
				out = append(out, *t)
				break
			}
		}
	}
	return out, nil
}

func (s *stubThreadRepo) GetThread(ctx context.Context, threadID string) (*models.Thread, error) {
	if t, ok := s.threads[threadID]; ok {
		return t, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubThreadRepo) EnsureDirectThread(ctx context.Context, from, to string) (*models.Thread, error) {
	id := models.DirectThreadID(from, to)
	if t, ok := s.threads[id]; ok {
		return t, nil
	}
	t := &models.Thread{
		ID:           id,
		Type:         models.ThreadTypeDirect,
		Members:      []string{from, to},
		UnreadCounts: map[string]int64{},
		CreatedAt:    time.Now(),
	}
	s.threads[id] = t
	return t, nil
}

func (s *stubThreadRepo) CreateGroupThread(ctx context.Context, members []string) (*models.Thread, error) {
	t := &models.Thread{
		ID:           "g1",
		Type:         models.ThreadTypeGroup,
		Members:      members,
		UnreadCounts: map[string]int64{},
		CreatedAt:    time.Now(),
	}
	s.threads[t.ID] = t
	return t, nil
}

func (s *stubThreadRepo) AddMessage(ctx context.Context, threadID string, msg *models.Message) (*models.Message, error) {
	msg.ID = "m1"
	msg.ThreadID = threadID
	msg.ReadBy = []string{msg.SenderID}
	msg.CreatedAt = time.Now()
	s.addedMessages = append(s.addedMessages, msg)
	return msg, nil
}

func (s *stubThreadRepo) UpdatePreview(ctx context.Context, threadID string, msg *models.Message, recipients []string) error {
	if s.previewErr != nil {
		return s.previewErr
	}
	s.previewThreads = append(s.previewThreads, threadID)
	return nil
}

func (s *stubThreadRepo) ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error) {
	return s.unread, nil
}

func (s *stubThreadRepo) ListUnreadMessages(ctx context.Context, threadID, uid string, limit int) ([]models.Message, error) {
	return s.unread, nil
}

func (s *stubThreadRepo) MarkMessageRead(ctx context.Context, threadID, messageID, uid string) error {
	return nil
}

func (s *stubThreadRepo) SetUnread(ctx context.Context, threadID, uid string, count int64) error {
	s.unreadWrites[threadID] = count
	return nil
}

func (s *stubThreadRepo) RecountUnread(ctx context.Context, threadID, uid string, limit int) (int, error) {
	return 0, nil
}

// stubUserRepo serves profiles from a map.
type stubUserRepo struct {
	profiles map[string]*models.UserProfile
}

func (s *stubUserRepo) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if p, ok := s.profiles[uid]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	for _, p := range s.profiles {
		if p.Handle == handle {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) SearchByHandlePrefix(ctx context.Context, prefix string, limit int) ([]models.UserProfile, error) {
	var out []models.UserProfile
	for _, p := range s.profiles {
		if strings.HasPrefix(p.Handle, prefix) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// stubNotificationRepo backs the notification handler tests.
type stubNotificationRepo struct {
	recent []models.Notification
	unread int64

	markedIDs     []string
	markAllCalled bool
	markErr       error
}

func (s *stubNotificationRepo) WatchRecent(ctx context.Context, uid string, limit int) (<-chan []models.Notification, <-chan error) {
	return nil, nil
}

func (s *stubNotificationRepo) WatchUnreadCount(ctx context.Context, uid string) (<-chan int64, <-chan error) {
	return nil, nil
}

func (s *stubNotificationRepo) ListRecent(ctx context.Context, uid string, limit int) ([]models.Notification, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func (s *stubNotificationRepo) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return s.unread, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, uid, notificationID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedIDs = append(s.markedIDs, notificationID)
	return nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, uid string) error {
	s.markAllCalled = true
	return nil
}

// stubPostRepo backs the message-board handler tests.
type stubPostRepo struct {
	posts     map[string]*models.Post
	comments  []models.Comment
	reactions []models.Reaction
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: map[string]*models.Post{}}
}

func (s *stubPostRepo) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.ID = "p1"
	post.CreatedAt = time.Now()
	s.posts[post.ID] = post
	return post, nil
}

func (s *stubPostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if p, ok := s.posts[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubPostRepo) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var out []models.Post
	for _, p := range s.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubPostRepo) ListComments(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	return s.comments, nil
}

func (s *stubPostRepo) AddReaction(ctx context.Context, postID string, reaction *models.Reaction) error {
	s.reactions = append(s.reactions, *reaction)
	return nil
}

func (s *stubPostRepo) ListReactions(ctx context.Context, postID string) ([]models.Reaction, error) {
	return s.reactions, nil
}
