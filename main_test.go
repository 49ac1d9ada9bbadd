package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/app/config"
	"quill/app/feed"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const pageJSON = `{"posts":[
	{"id":1,"title":"Pasta night","body":"A simple recipe for dinner","userId":4,"tags":["cooking"],"reactions":{"likes":3,"dislikes":0}},
	{"id":2,"title":"Mountain hike","body":"Three days on the trail","userId":5,"tags":["hiking"],"reactions":7}
],"total":2,"skip":0,"limit":100}`

const searchJSON = `{"posts":[
	{"id":2,"title":"Mountain hike","body":"Three days on the trail","userId":5,"tags":["hiking"],"reactions":7}
],"total":1,"skip":0,"limit":30}`

func newExternalServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/posts/search") {
			w.Write([]byte(searchJSON))
			return
		}
		w.Write([]byte(pageJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "quill version "+cliVersion+"\n", out)
}

func TestBrowseCmd(t *testing.T) {
	srv := newExternalServer(t)
	settings.Set("external_base_url", srv.URL)
	settings.Set("log_level", "error")
	t.Cleanup(func() { settings = config.New() })

	t.Run("category", func(t *testing.T) {
		out, err := execute(t, "browse", "--category", "Food", "--query", "", "--sort", "title_asc")
		require.NoError(t, err)
		assert.Contains(t, out, "Category food, sorted by title_asc")
		assert.Contains(t, out, "* #2 Mountain hike [food]")
		assert.Contains(t, out, "  #1 Pasta night [food]")
	})

	t.Run("search", func(t *testing.T) {
		out, err := execute(t, "browse", "--category", "all", "--query", "hike")
		require.NoError(t, err)
		assert.Contains(t, out, `Search results for "hike" (1)`)
		assert.Contains(t, out, "* #2 Mountain hike [hiking]")
		assert.NotContains(t, out, "Pasta")
	})
}

func TestBrowseCmdWithRestore(t *testing.T) {
	srv := newExternalServer(t)
	settings.Set("external_base_url", srv.URL)
	settings.Set("log_level", "error")
	t.Cleanup(func() {
		settings = config.New()
		browseRestore = ""
	})

	store, err := repositories.NewStore(repositories.Seed{})
	require.NoError(t, err)
	_, err = store.CreatePost(models.Post{Title: "Apple pie", Content: "Bake it slowly", Category: "Food", Published: true})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "backup.db")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, store.Backup(f))
	require.NoError(t, f.Close())
	require.NoError(t, store.Close())

	out, err := execute(t, "browse", "--category", "food", "--query", "", "--sort", "title_asc", "--restore", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Category food, sorted by title_asc (3)")
	assert.Contains(t, out, "* #1 Apple pie [Food]")
	assert.Contains(t, out, "  #2 Mountain hike [food]")

	_, err = execute(t, "browse", "--restore", filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestPrintViewEmpty(t *testing.T) {
	var buf bytes.Buffer
	printView(&buf, feed.View{Params: feed.Params{Category: "all", SortBy: feed.SortLatest}, Posts: []*models.Post{}})
	assert.Equal(t, "Category all, sorted by latest (0)\nNo posts.\n", buf.String())
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestNewSourceMemoryCache(t *testing.T) {
	srv := newExternalServer(t)
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.ExternalBaseURL = srv.URL

	source, closer, err := newSource(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closer()

	posts := source.Latest(context.Background())
	require.Len(t, posts, 2)
	assert.Equal(t, "Pasta night", posts[0].Title)
}

func TestNewSourceRedisUnavailable(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	cfg.RedisAddr = "127.0.0.1:1"

	_, _, err = newSource(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenStoreFromBackup(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	store, err := openStore(cfg, "")
	require.NoError(t, err)
	admin, err := store.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
	assert.NotEqual(t, cfg.AdminPassword, admin.Password)

	path := filepath.Join(t.TempDir(), "backup.db")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, store.Backup(f))
	require.NoError(t, f.Close())
	require.NoError(t, store.Close())

	restored, err := openStore(cfg, path)
	require.NoError(t, err)
	defer restored.Close()
	users, err := restored.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = openStore(cfg, filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}
