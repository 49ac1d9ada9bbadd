package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"quill/app/feed"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExternal struct {
	posts     []*models.Post
	results   []*models.Post
	refreshed []string

	mu         sync.Mutex
	prefetched []string
}

func (s *stubExternal) ByCategory(_ context.Context, category string) []*models.Post {
	return s.posts
}

func (s *stubExternal) Search(_ context.Context, query string) []*models.Post {
	return s.results
}

func (s *stubExternal) Prefetch(_ context.Context, current string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefetched = append(s.prefetched, current)
}

func (s *stubExternal) prefetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prefetched...)
}

func (s *stubExternal) Refresh(_ context.Context, category string) error {
	s.refreshed = append(s.refreshed, category)
	return nil
}

type testServer struct {
	router   *mux.Router
	store    *repositories.Store
	external *stubExternal
	feed     *feed.Feed
}

func setupTestServer(t *testing.T) *testServer {
	hash, err := services.HashPassword("admin123")
	require.NoError(t, err)

	store, err := repositories.NewStore(repositories.Seed{
		Admin: &models.User{Username: "admin", Password: hash},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ext := &stubExternal{
		posts: []*models.Post{
			{ID: 1, Title: "Remote", Content: "From afar", Category: "Travel", External: true, Published: true,
				CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		results: []*models.Post{{ID: 9, Title: "Found", External: true}},
	}

	auth := services.NewAuthService(store.Users, "test-secret", time.Hour)
	f := feed.New(store, ext, nil)
	router := SetupRoutes(Deps{
		Store:     store,
		Auth:      auth,
		Feed:      f,
		Refresher: ext,
	})
	return &testServer{router: router, store: store, external: ext, feed: f}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, "POST", "/api/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAPIRoutes(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, "POST", "/api/auth/register", "", `{"username":"alice","password":"wonderland","fullName":"Alice"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "wonderland")
	w = s.do(t, "POST", "/api/auth/register", "", `{"username":"bob","password":"builder1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	adminToken := s.login(t, "admin", "admin123")
	aliceToken := s.login(t, "alice", "wonderland")
	bobToken := s.login(t, "bob", "builder1")

	var postID int

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := s.do(t, "POST", "/api/auth/register", "", `{"username":"alice","password":"another1"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad login", func(t *testing.T) {
		w := s.do(t, "POST", "/api/auth/login", "", `{"username":"alice","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create post requires auth", func(t *testing.T) {
		w := s.do(t, "POST", "/api/posts", "", `{"title":"Hello","content":"Anonymous content"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create post", func(t *testing.T) {
		w := s.do(t, "POST", "/api/posts", aliceToken,
			`{"title":"Lisbon trams","content":"Riding tram 28 up the hills","category":"Travel"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var post models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
		assert.NotZero(t, post.ID)
		require.NotNil(t, post.AuthorID)
		assert.Equal(t, 2, *post.AuthorID)
		assert.True(t, post.Published)
		postID = post.ID
	})

	t.Run("create post validation", func(t *testing.T) {
		w := s.do(t, "POST", "/api/posts", aliceToken, `{"title":"x","content":"short"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "title")
		assert.Contains(t, resp.Fields, "content")
	})

	t.Run("create post rejects unknown fields", func(t *testing.T) {
		w := s.do(t, "POST", "/api/posts", aliceToken, `{"title":"Valid title","content":"Valid content here","id":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list and show posts", func(t *testing.T) {
		w := s.do(t, "GET", "/api/posts?category=Travel", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Posts []models.Post `json:"posts"`
			Total int           `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Equal(t, 1, list.Total)

		w = s.do(t, "GET", "/api/posts?author=abc", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, "GET", "/api/posts/"+strconv.Itoa(postID), "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, "GET", "/api/posts/999", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update post ownership", func(t *testing.T) {
		path := "/api/posts/" + strconv.Itoa(postID)
		w := s.do(t, "PATCH", path, bobToken, `{"title":"Hijacked"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "PATCH", path, aliceToken, `{"title":"Lisbon by tram"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var post models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
		assert.Equal(t, "Lisbon by tram", post.Title)
		assert.Equal(t, "Riding tram 28 up the hills", post.Content)

		w = s.do(t, "PUT", path, adminToken, `{"tags":"tram,portugal"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("comments", func(t *testing.T) {
		path := "/api/posts/" + strconv.Itoa(postID) + "/comments"
		w := s.do(t, "POST", path, bobToken, `{"content":"Lovely"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var comment models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
		assert.Equal(t, 3, comment.AuthorID)

		w = s.do(t, "GET", path, "", "")
		require.Equal(t, http.StatusOK, w.Code)
		var comments []models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
		assert.Len(t, comments, 1)

		w = s.do(t, "POST", "/api/posts/999/comments", bobToken, `{"content":"Lost"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		commentPath := "/api/comments/" + strconv.Itoa(comment.ID)
		w = s.do(t, "DELETE", commentPath, aliceToken, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = s.do(t, "DELETE", commentPath, bobToken, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = s.do(t, "DELETE", commentPath, bobToken, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("feed", func(t *testing.T) {
		w := s.do(t, "GET", "/api/feed?category=travel&sort=oldest", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var view struct {
			Featured   *models.Post  `json:"featured"`
			Posts      []models.Post `json:"posts"`
			Total      int           `json:"total"`
			SearchMode bool          `json:"searchMode"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, 2, view.Total)
		require.NotNil(t, view.Featured)
		assert.Equal(t, "Remote", view.Featured.Title)
		require.Len(t, view.Posts, 1)
		assert.Equal(t, "Lisbon by tram", view.Posts[0].Title)
		assert.False(t, view.SearchMode)

		w = s.do(t, "GET", "/api/feed?q=found", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.True(t, view.SearchMode)
		assert.Equal(t, 1, view.Total)
		assert.Equal(t, "Found", view.Featured.Title)
	})

	t.Run("categories", func(t *testing.T) {
		w := s.do(t, "GET", "/api/categories", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		var categories []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
		assert.Equal(t, "all", categories[0])
		assert.Contains(t, categories, "Food")
	})

	t.Run("feed refresh is admin only", func(t *testing.T) {
		w := s.do(t, "POST", "/api/feed/refresh?category=Food", aliceToken, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "POST", "/api/feed/refresh?category=Food", adminToken, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"Food"}, s.external.refreshed)
	})

	t.Run("accounts and admin views", func(t *testing.T) {
		w := s.do(t, "GET", "/api/me", aliceToken, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)

		w = s.do(t, "GET", "/api/users", aliceToken, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "GET", "/api/users", adminToken, "")
		require.Equal(t, http.StatusOK, w.Code)
		var users []models.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
		assert.Len(t, users, 3)
		assert.True(t, users[0].IsAdmin)

		w = s.do(t, "GET", "/api/stats", adminToken, "")
		require.Equal(t, http.StatusOK, w.Code)
		var stats services.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.Users)
		assert.Equal(t, 1, stats.Posts)
		assert.Equal(t, 0, stats.Comments)
		assert.Equal(t, 1, stats.PostsByCat["travel"])
	})

	t.Run("admin backup", func(t *testing.T) {
		w := s.do(t, "GET", "/api/admin/backup", aliceToken, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "GET", "/api/admin/backup", adminToken, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))

		restored, err := repositories.RestoreStore(w.Body)
		require.NoError(t, err)
		defer restored.Close()
		users, err := restored.GetAllUsers()
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := s.do(t, "GET", "/api/posts", "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("delete post cascades", func(t *testing.T) {
		path := "/api/posts/" + strconv.Itoa(postID)
		w := s.do(t, "POST", path+"/comments", bobToken, `{"content":"Again"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, "DELETE", path, bobToken, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = s.do(t, "DELETE", path, aliceToken, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		comments, err := s.store.GetCommentsByPost(postID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		w = s.do(t, "GET", path, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("health", func(t *testing.T) {
		w := s.do(t, "GET", "/healthz", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestFeedRoutePrefetchesOnCategoryChange(t *testing.T) {
	s := setupTestServer(t)

	for _, category := range []string{"food", "travel", "Travel"} {
		w := s.do(t, "GET", "/api/feed?category="+category, "", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	s.feed.Wait()

	assert.Equal(t, []string{"food", "travel"}, s.external.prefetches())
	assert.Equal(t, "travel", s.feed.Current().Params.Category)
}
