package feed

import (
	"context"
	"sync"

	"quill/app/models"

	"go.uber.org/zap"
)

// LocalSource lists stored posts.
type LocalSource interface {
	GetAllPosts() ([]*models.Post, error)
}

// ExternalSource serves mapped external posts. Its methods never fail; a
// broken source contributes no posts.
type ExternalSource interface {
	ByCategory(ctx context.Context, category string) []*models.Post
	Search(ctx context.Context, query string) []*models.Post
	Prefetch(ctx context.Context, current string)
}

// View is one composed feed.
type View struct {
	Params     Params         `json:"-"`
	Featured   *models.Post   `json:"featured"`
	Posts      []*models.Post `json:"posts"`
	Total      int            `json:"total"`
	SearchMode bool           `json:"searchMode"`
}

// Feed composes views and keeps the latest one. Results of superseded
// updates are discarded.
type Feed struct {
	local    LocalSource
	external ExternalSource
	logger   *zap.Logger

	mu           sync.Mutex
	generation   uint64
	current      View
	lastCategory string
	background   sync.WaitGroup
}

// New creates a Feed over the two sources.
func New(local LocalSource, external ExternalSource, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{local: local, external: external, logger: logger}
}

// Compose builds a view for p without touching the feed state.
//
// A non-empty query switches to search mode: the view holds the external
// search results only, unfiltered and in source order.
func (f *Feed) Compose(ctx context.Context, p Params) View {
	p = p.Normalize()

	if p.Query != "" {
		posts := f.external.Search(ctx, p.Query)
		return newView(p, posts, true)
	}

	local, err := f.local.GetAllPosts()
	if err != nil {
		f.logger.Error("list local posts", zap.Error(err))
		local = nil
	}
	external := f.external.ByCategory(ctx, p.Category)
	return newView(p, Apply(Merge(local, external), p), false)
}

// Update composes a view for p and makes it current. It reports false, and
// leaves the current view alone, when a later Update started meanwhile or ctx
// ended. A category change warms the cache of the other categories in the
// background.
func (f *Feed) Update(ctx context.Context, p Params) (View, bool) {
	p = p.Normalize()

	f.mu.Lock()
	f.generation++
	gen := f.generation
	changed := p.Category != f.lastCategory
	f.lastCategory = p.Category
	f.mu.Unlock()

	if changed {
		f.prefetch(ctx, p.Category)
	}

	view := f.Compose(ctx, p)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || ctx.Err() != nil {
		f.logger.Debug("dropping stale feed", zap.Uint64("generation", gen), zap.String("category", p.Category))
		return view, false
	}
	f.current = view
	return view, true
}

// Current returns the last applied view.
func (f *Feed) Current() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Wait blocks until background pre-fetches finish.
func (f *Feed) Wait() {
	f.background.Wait()
}

func (f *Feed) prefetch(ctx context.Context, current string) {
	f.background.Add(1)
	go func() {
		defer f.background.Done()
		f.external.Prefetch(context.WithoutCancel(ctx), current)
	}()
}

func newView(p Params, posts []*models.Post, search bool) View {
	featured, grid := Split(posts)
	return View{
		Params:     p,
		Featured:   featured,
		Posts:      grid,
		Total:      len(posts),
		SearchMode: search,
	}
}
