package controllers

import (
	"context"
	"net/http"

	"quill/app/feed"
	"quill/app/external"

	"go.uber.org/zap"
)

// Updater applies feed params and returns the resulting view. The bool
// reports whether the view became current or was dropped as stale.
type Updater interface {
	Update(ctx context.Context, p feed.Params) (feed.View, bool)
}

// Refresher invalidates the cached external posts of a category.
type Refresher interface {
	Refresh(ctx context.Context, category string) error
}

// FeedController serves the merged local and external feed
type FeedController struct {
	updater   Updater
	refresher Refresher
	logger    *zap.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(updater Updater, refresher Refresher, logger *zap.Logger) *FeedController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedController{updater: updater, refresher: refresher, logger: logger}
}

// Index updates the feed from the category, q and sort query parameters.
// A view superseded by a newer request is still returned to its caller.
func (fc *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, _ := fc.updater.Update(r.Context(), feed.Params{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		SortBy:   feed.SortKey(q.Get("sort")),
	})
	sendJSON(w, http.StatusOK, view)
}

// Categories lists the categories the feed knows about
func (fc *FeedController) Categories(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, append([]string{feed.AllCategories}, external.Categories...))
}

// Refresh drops the cached external posts of the category query parameter
func (fc *FeedController) Refresh(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if err := fc.refresher.Refresh(r.Context(), category); err != nil {
		fc.logger.Error("refresh external cache", zap.String("category", category), zap.Error(err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
