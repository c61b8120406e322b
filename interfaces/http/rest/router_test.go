package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogstore/infrastructure/config"
	"blogstore/infrastructure/di"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerAddress:     ":0",
		Environment:       "development",
		StoreDriver:       "memory",
		TableNamespace:    "blog",
		MigrationsEnabled: true,
		ValidateOnStartup: true,
		LogLevel:          "error",
		EnableCORS:        false,
		ShutdownTimeout:   1,
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, container.MigrationRunner.Run(context.Background()))

	server := httptest.NewServer(NewRouter(container).Setup())
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decodeData(t *testing.T, raw []byte, target interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.True(t, env.Success, "response not successful: %s", raw)
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func TestUserAndPostLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Create a user.
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", map[string]string{
		"name":  "Ann",
		"email": "ann@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decodeData(t, body, &user)
	require.NotEmpty(t, user.ID)

	// Create a draft post.
	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/users/%s/posts", server.URL, user.ID), map[string]interface{}{
		"title":   "First Post",
		"content": "hello",
		"tags":    []string{"go"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var post struct {
		PostID string `json:"postId"`
		Status string `json:"status"`
	}
	decodeData(t, body, &post)
	assert.Equal(t, "DRAFT", post.Status)

	// Publish it.
	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/users/%s/posts/%s/publish", server.URL, user.ID, post.PostID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decodeData(t, body, &post)
	assert.Equal(t, "PUBLISHED", post.Status)

	// The by-id view sees the published post.
	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/v1/posts/"+post.PostID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Stats reflect the transition.
	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/users/%s/stats", server.URL, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var withStats struct {
		Stats struct {
			TotalPosts     int `json:"totalPosts"`
			PublishedPosts int `json:"publishedPosts"`
			DraftPosts     int `json:"draftPosts"`
		} `json:"stats"`
	}
	decodeData(t, body, &withStats)
	assert.Equal(t, 1, withStats.Stats.TotalPosts)
	assert.Equal(t, 1, withStats.Stats.PublishedPosts)
	assert.Equal(t, 0, withStats.Stats.DraftPosts)

	// Listing filters by status.
	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/users/%s/posts?status=PUBLISHED", server.URL, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var posts []struct {
		PostID string `json:"postId"`
	}
	decodeData(t, body, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, post.PostID, posts[0].PostID)

	// Delete and verify gone.
	resp, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/users/%s/posts/%s", server.URL, user.ID, post.PostID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(body))

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/posts/"+post.PostID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateUser_DuplicateEmailReturnsConflict(t *testing.T) {
	server := newTestServer(t)

	body := map[string]string{"name": "Ann", "email": "ann@example.com"}
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", map[string]string{
		"name":  "Ann",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLookupUserByEmail(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", map[string]string{
		"name":  "Ann",
		"email": "ann@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/users?email=ann@example.com", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var user struct {
		Email string `json:"email"`
	}
	decodeData(t, body, &user)
	assert.Equal(t, "ann@example.com", user.Email)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/users?email=missing@example.com", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMigrationAdminEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/migrations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var statuses []struct {
		Version string `json:"version"`
		Applied bool   `json:"applied"`
	}
	decodeData(t, body, &statuses)
	require.Len(t, statuses, 4)
	for _, status := range statuses {
		assert.True(t, status.Applied, "version %s not applied", status.Version)
	}

	// Re-running against an up-to-date schema is a no-op.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/v1/migrations/run", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
