// Package feed composes the post list shown to readers from local and
// external posts.
package feed

import (
	"slices"
	"strings"

	"quill/app/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the feed.
type SortKey string

const (
	SortLatest    SortKey = "latest"
	SortOldest    SortKey = "oldest"
	SortTitleAsc  SortKey = "title_asc"
	SortTitleDesc SortKey = "title_desc"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// ParseSort maps s to a SortKey; anything unknown sorts by latest.
func ParseSort(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortOldest, SortTitleAsc, SortTitleDesc:
		return k
	}
	return SortLatest
}

// Params are the live inputs of the pipeline.
type Params struct {
	Category string
	Query    string
	SortBy   SortKey
}

// Normalize folds the category to its lower-case key and trims the query.
func (p Params) Normalize() Params {
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Category == "" {
		p.Category = AllCategories
	}
	p.Query = strings.TrimSpace(p.Query)
	p.SortBy = ParseSort(string(p.SortBy))
	return p
}

// collationTag is the locale used for title ordering.
var collationTag = language.English

// Merge concatenates local and external posts into a new slice.
func Merge(local, external []*models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(local)+len(external))
	out = append(out, local...)
	return append(out, external...)
}

// Apply filters posts by category, then by query, then stable-sorts them.
// It returns a new slice and leaves posts untouched.
func Apply(posts []*models.Post, p Params) []*models.Post {
	p = p.Normalize()

	out := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if p.Category != AllCategories && strings.ToLower(post.Category) != p.Category {
			continue
		}
		if !post.Matches(p.Query) {
			continue
		}
		out = append(out, post)
	}

	slices.SortStableFunc(out, comparator(p.SortBy))
	return out
}

func comparator(key SortKey) func(a, b *models.Post) int {
	switch key {
	case SortOldest:
		return func(a, b *models.Post) int { return compareInt(timestamp(a), timestamp(b)) }
	case SortTitleAsc, SortTitleDesc:
		c := collate.New(collationTag)
		if key == SortTitleDesc {
			return func(a, b *models.Post) int { return c.CompareString(b.Title, a.Title) }
		}
		return func(a, b *models.Post) int { return c.CompareString(a.Title, b.Title) }
	default:
		return func(a, b *models.Post) int { return compareInt(timestamp(b), timestamp(a)) }
	}
}

// timestamp treats a missing creation time as the epoch.
func timestamp(p *models.Post) int64 {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return p.CreatedAt.UnixNano()
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Split returns the featured post and the remaining grid.
func Split(posts []*models.Post) (*models.Post, []*models.Post) {
	if len(posts) == 0 {
		return nil, []*models.Post{}
	}
	return posts[0], posts[1:]
}
