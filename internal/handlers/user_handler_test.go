package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/models"
)

func newUserHandler() *UserHandler {
	return NewUserHandler(&stubUserRepo{profiles: map[string]*models.UserProfile{
		"u1": {UID: "u1", DisplayName: "Alice", Handle: "alice"},
		"u2": {UID: "u2", DisplayName: "Albert", Handle: "albert"},
		"u3": {UID: "u3", DisplayName: "Bob", Handle: "bob"},
	}})
}

func TestGetByHandleStripsAtPrefix(t *testing.T) {
	h := newUserHandler()

	c, rec := newRequestContext(t, http.MethodGet, "/api/users/by-handle/@alice", "", "viewer")
	c.SetParamNames("handle")
	c.SetParamValues("@alice")

	require.NoError(t, h.GetByHandle(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			User models.UserProfile `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.Data.User.UID)
}

func TestGetByHandleNotFound(t *testing.T) {
	h := newUserHandler()

	c, _ := newRequestContext(t, http.MethodGet, "/api/users/by-handle/nobody", "", "viewer")
	c.SetParamNames("handle")
	c.SetParamValues("nobody")

	err := h.GetByHandle(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestSearchUsersByPrefix(t *testing.T) {
	h := newUserHandler()

	c, rec := newRequestContext(t, http.MethodGet, "/api/users/search?q=%40al", "", "viewer")
	require.NoError(t, h.SearchUsers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Users []models.UserProfile `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Users, 2)
	for _, u := range resp.Data.Users {
		assert.Contains(t, []string{"alice", "albert"}, u.Handle)
	}
}

func TestSearchUsersRequiresQuery(t *testing.T) {
	h := newUserHandler()

	c, _ := newRequestContext(t, http.MethodGet, "/api/users/search", "", "viewer")
	err := h.SearchUsers(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
