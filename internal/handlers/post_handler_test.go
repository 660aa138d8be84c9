package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/platform"
)

func TestCreatePostFansOutMentions(t *testing.T) {
	fanouts := make(chan platform.MentionFanout, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/message-board/notify-mentions", r.URL.Path)
		assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))

		var fanout platform.MentionFanout
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fanout))
		fanouts <- fanout
	}))
	defer srv.Close()

	posts := newStubPostRepo()
	users := &stubUserRepo{profiles: map[string]*models.UserProfile{
		"u1": {UID: "u1", DisplayName: "Alice", Handle: "alice"},
	}}
	h := NewPostHandler(posts, users, platform.NewClient(srv.URL, zerolog.Nop()), zerolog.Nop())

	c, rec := newRequestContext(t, http.MethodPost, "/api/message-board/posts",
		`{"title":"Launch day","body":"Hi @bob and @carol, check this out"}`, "u1")
	require.NoError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	select {
	case fanout := <-fanouts:
		assert.Equal(t, "p1", fanout.PostID)
		assert.Equal(t, "Alice", fanout.AuthorName)
		assert.Equal(t, []string{"bob", "carol"}, fanout.Mentions)
	case <-time.After(2 * time.Second):
		t.Fatal("mention fan-out never reached the platform API")
	}
}

func TestCreatePostWithoutMentionsSkipsFanout(t *testing.T) {
	called := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called <- struct{}{}
	}))
	defer srv.Close()

	h := NewPostHandler(newStubPostRepo(), &stubUserRepo{}, platform.NewClient(srv.URL, zerolog.Nop()), zerolog.Nop())

	c, rec := newRequestContext(t, http.MethodPost, "/api/message-board/posts",
		`{"body":"no handles here, just an email a@b.com"}`, "u1")
	require.NoError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	select {
	case <-called:
		t.Fatal("fan-out called for a post with no mentions")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreatePostSucceedsWhenFanoutFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	posts := newStubPostRepo()
	h := NewPostHandler(posts, &stubUserRepo{}, platform.NewClient(srv.URL, zerolog.Nop()), zerolog.Nop())

	c, rec := newRequestContext(t, http.MethodPost, "/api/message-board/posts",
		`{"body":"ping @bob"}`, "u1")
	require.NoError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, posts.posts, 1)
}

func TestCreatePostUnknownAuthorGetsPlaceholderName(t *testing.T) {
	posts := newStubPostRepo()
	h := NewPostHandler(posts, &stubUserRepo{}, platform.NewClient("http://127.0.0.1:0", zerolog.Nop()), zerolog.Nop())

	c, rec := newRequestContext(t, http.MethodPost, "/api/message-board/posts",
		`{"body":"hello"}`, "ghost")
	require.NoError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.PlaceholderDisplayName, posts.posts["p1"].AuthorName)
}

func TestCreatePostRejectsEmptyBody(t *testing.T) {
	h := NewPostHandler(newStubPostRepo(), &stubUserRepo{}, platform.NewClient("http://127.0.0.1:0", zerolog.Nop()), zerolog.Nop())

	c, _ := newRequestContext(t, http.MethodPost, "/api/message-board/posts", `{"title":"x"}`, "u1")
	err := h.CreatePost(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestAddReaction(t *testing.T) {
	posts := newStubPostRepo()
	h := NewPostHandler(posts, &stubUserRepo{}, platform.NewClient("http://127.0.0.1:0", zerolog.Nop()), zerolog.Nop())

	c, rec := newRequestContext(t, http.MethodPost, "/api/message-board/posts/p1/reactions",
		`{"kind":"heart"}`, "u1")
	c.SetParamNames("id")
	c.SetParamValues("p1")

	require.NoError(t, h.AddReaction(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, posts.reactions, 1)
	assert.Equal(t, "u1", posts.reactions[0].UserID)
	assert.Equal(t, "heart", posts.reactions[0].Kind)
}
