package external

import (
	"context"
	"strings"
	"time"

	"quill/app/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the network side of the content source.
type Fetcher interface {
	Page(ctx context.Context, limit, skip int) (*Page, error)
	Search(ctx context.Context, query string) (*Page, error)
}

const latestKey = "all"

// DefaultTTL is the freshness window of cached category results.
const DefaultTTL = 5 * time.Minute

// Source serves mapped posts from the content source. Failures never reach
// the caller: they are logged and yield an empty slice.
type Source struct {
	fetcher Fetcher
	cache   Cache
	batch   int
	logger  *zap.Logger
	now     func() time.Time
}

// NewSource creates a Source that fetches batch posts at a time.
func NewSource(fetcher Fetcher, cache Cache, batch int, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batch <= 0 {
		batch = 100
	}
	if cache == nil {
		cache = NewMemoryCache(DefaultTTL)
	}
	return &Source{
		fetcher: fetcher,
		cache:   cache,
		batch:   batch,
		logger:  logger,
		now:     models.Now,
	}
}

// Latest returns the first batch of source posts.
func (s *Source) Latest(ctx context.Context) []*models.Post {
	return s.cached(ctx, latestKey, func(page *Page) []*models.Post {
		return MapPosts(page.Posts, s.now())
	})
}

// ByCategory returns the source posts classified under category.
func (s *Source) ByCategory(ctx context.Context, category string) []*models.Post {
	key := strings.ToLower(category)
	if key == "" || key == latestKey {
		return s.Latest(ctx)
	}
	return s.cached(ctx, key, func(page *Page) []*models.Post {
		return MapPosts(MatchCategory(key, page.Posts), s.now())
	})
}

// Search queries the source directly; results are not cached.
func (s *Source) Search(ctx context.Context, query string) []*models.Post {
	page, err := s.fetcher.Search(ctx, query)
	if err != nil {
		s.logger.Warn("external search failed", zap.String("query", query), zap.Error(err))
		return []*models.Post{}
	}
	return MapPosts(page.Posts, s.now())
}

// Refresh drops the cached entry of category.
func (s *Source) Refresh(ctx context.Context, category string) error {
	key := strings.ToLower(category)
	if key == "" {
		key = latestKey
	}
	return s.cache.Delete(ctx, key)
}

// Prefetch warms the cache for every known category other than current.
// One page is fetched and shared by all missing categories. It blocks until
// the cache writes finish; errors are only logged.
func (s *Source) Prefetch(ctx context.Context, current string) {
	var missing []string
	for _, category := range Categories {
		if strings.EqualFold(category, current) {
			continue
		}
		key := strings.ToLower(category)
		if _, ok := s.cache.Get(ctx, key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return
	}

	page, err := s.fetcher.Page(ctx, s.batch, 0)
	if err != nil {
		s.logger.Warn("external prefetch failed", zap.String("current", current), zap.Error(err))
		return
	}

	now := s.now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, key := range missing {
		key := key
		g.Go(func() error {
			posts := MapPosts(MatchCategory(key, page.Posts), now)
			if err := s.cache.Set(ctx, key, posts); err != nil {
				s.logger.Warn("external cache write failed", zap.String("category", key), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	s.logger.Debug("external categories prefetched", zap.Int("count", len(missing)))
}

func (s *Source) cached(ctx context.Context, key string, build func(page *Page) []*models.Post) []*models.Post {
	if posts, ok := s.cache.Get(ctx, key); ok {
		return posts
	}

	page, err := s.fetcher.Page(ctx, s.batch, 0)
	if err != nil {
		s.logger.Warn("external fetch failed", zap.String("category", key), zap.Error(err))
		return []*models.Post{}
	}

	posts := build(page)
	if err := s.cache.Set(ctx, key, posts); err != nil {
		s.logger.Warn("external cache write failed", zap.String("category", key), zap.Error(err))
	}
	s.logger.Debug("external posts fetched", zap.String("category", key), zap.Int("count", len(posts)))
	return posts
}
