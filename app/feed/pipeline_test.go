package feed

import (
	"slices"
	"testing"
	"time"

	"quill/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func post(id int, title, category string, age time.Duration) *models.Post {
	return &models.Post{
		ID:        id,
		Title:     title,
		Content:   "content of " + title,
		Category:  category,
		CreatedAt: base.Add(-age),
		Published: true,
	}
}

func ids(posts []*models.Post) []int {
	out := []int{}
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func titlesOf(posts []*models.Post) []string {
	out := []string{}
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func samplePosts() []*models.Post {
	return []*models.Post{
		post(1, "Tokyo at night", "Travel", 3*time.Hour),
		post(2, "apple pie", "food", 1*time.Hour),
		post(3, "Banana bread", "Food", 5*time.Hour),
		post(4, "Écrire chaque jour", "Writing", 2*time.Hour),
		post(5, "Go generics", "Technology", 4*time.Hour),
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortLatest, ParseSort(""))
	assert.Equal(t, SortLatest, ParseSort("popular"))
	assert.Equal(t, SortOldest, ParseSort("oldest"))
	assert.Equal(t, SortTitleAsc, ParseSort(" TITLE_ASC "))
	assert.Equal(t, SortTitleDesc, ParseSort("title_desc"))
}

func TestApplyCategoryFilter(t *testing.T) {
	posts := samplePosts()

	got := Apply(posts, Params{Category: "food"})
	assert.Equal(t, []int{2, 3}, ids(got))

	got = Apply(posts, Params{Category: "Food"})
	assert.Equal(t, []int{2, 3}, ids(got), "category parameter is folded to lower case")

	got = Apply(posts, Params{Category: "all"})
	assert.Len(t, got, 5)

	got = Apply(posts, Params{Category: "writing"})
	assert.Equal(t, []int{4}, ids(got))

	got = Apply(posts, Params{Category: "gardening"})
	assert.Empty(t, got)
}

func TestApplySearchFilter(t *testing.T) {
	posts := samplePosts()
	posts[4].Tags = "golang,backend"

	assert.Equal(t, []int{1}, ids(Apply(posts, Params{Query: "TOKYO"})))
	assert.Equal(t, []int{5}, ids(Apply(posts, Params{Query: "backend"})))
	assert.Equal(t, []int{2, 3}, ids(Apply(posts, Params{Query: "content of", Category: "food"})))
}

func TestApplyFiltersCommute(t *testing.T) {
	posts := samplePosts()
	p := Params{Category: "food", Query: "bread"}

	both := Apply(posts, p)
	searchFirst := Apply(Apply(posts, Params{Query: p.Query}), Params{Category: p.Category})
	categoryFirst := Apply(Apply(posts, Params{Category: p.Category}), Params{Query: p.Query})

	assert.ElementsMatch(t, ids(both), ids(searchFirst))
	assert.ElementsMatch(t, ids(both), ids(categoryFirst))
}

func TestApplySortByTime(t *testing.T) {
	posts := samplePosts()

	latest := Apply(posts, Params{SortBy: SortLatest})
	assert.Equal(t, []int{2, 4, 1, 5, 3}, ids(latest))

	oldest := Apply(posts, Params{SortBy: SortOldest})
	reversed := slices.Clone(ids(latest))
	slices.Reverse(reversed)
	assert.Equal(t, reversed, ids(oldest))

	assert.Equal(t, ids(latest), ids(Apply(posts, Params{})), "latest is the default")
}

func TestApplyMissingCreatedAtSortsAsEpoch(t *testing.T) {
	undated := &models.Post{ID: 9, Title: "Undated"}
	ancient := &models.Post{ID: 8, Title: "Ancient", CreatedAt: time.Unix(10, 0)}
	posts := append(samplePosts(), undated, ancient)

	latest := Apply(posts, Params{SortBy: SortLatest})
	assert.Equal(t, 9, latest[len(latest)-1].ID)

	oldest := Apply(posts, Params{SortBy: SortOldest})
	assert.Equal(t, []int{9, 8}, ids(oldest[:2]))
}

func TestApplySortIsStable(t *testing.T) {
	a := &models.Post{ID: 1, Title: "Same", CreatedAt: base}
	b := &models.Post{ID: 2, Title: "Same", CreatedAt: base}
	c := &models.Post{ID: 3, Title: "Same", CreatedAt: base}

	for _, key := range []SortKey{SortLatest, SortOldest, SortTitleAsc, SortTitleDesc} {
		assert.Equal(t, []int{1, 2, 3}, ids(Apply([]*models.Post{a, b, c}, Params{SortBy: key})), key)
	}
}

func TestApplySortByTitle(t *testing.T) {
	posts := samplePosts()

	asc := Apply(posts, Params{SortBy: SortTitleAsc})
	assert.Equal(t, []string{"apple pie", "Banana bread", "Écrire chaque jour", "Go generics", "Tokyo at night"}, titlesOf(asc))

	desc := Apply(posts, Params{SortBy: SortTitleDesc})
	mirrored := slices.Clone(titlesOf(asc))
	slices.Reverse(mirrored)
	assert.Equal(t, mirrored, titlesOf(desc))
}

func TestApplyIsPure(t *testing.T) {
	posts := samplePosts()
	before := ids(posts)
	p := Params{Category: "food", SortBy: SortTitleDesc}

	first := Apply(posts, p)
	second := Apply(posts, p)

	assert.Equal(t, before, ids(posts), "input order is untouched")
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, ids(first), ids(Apply(first, p)))
}

func TestPipelineTwoLocalPostsLatest(t *testing.T) {
	t1 := &models.Post{ID: 1, Title: "Earlier", CreatedAt: base}
	t2 := &models.Post{ID: 2, Title: "Later", CreatedAt: base.Add(time.Minute)}

	got := Apply(Merge([]*models.Post{t1, t2}, nil), Params{Category: AllCategories, SortBy: SortLatest})
	assert.Equal(t, []*models.Post{t2, t1}, got)
}

func TestPipelineTitleDesc(t *testing.T) {
	local := []*models.Post{
		{ID: 1, Title: "Apple", CreatedAt: base},
		{ID: 2, Title: "Banana", CreatedAt: base},
	}

	got := Apply(Merge(local, nil), Params{Category: AllCategories, SortBy: SortTitleDesc})
	assert.Equal(t, []string{"Banana", "Apple"}, titlesOf(got))
}

func TestMergeAndSplit(t *testing.T) {
	local := []*models.Post{{ID: 1}}
	external := []*models.Post{{ID: 100}, {ID: 101}}

	merged := Merge(local, external)
	assert.Equal(t, []int{1, 100, 101}, ids(merged))

	featured, grid := Split(merged)
	require.NotNil(t, featured)
	assert.Equal(t, 1, featured.ID)
	assert.Equal(t, []int{100, 101}, ids(grid))

	featured, grid = Split(nil)
	assert.Nil(t, featured)
	assert.NotNil(t, grid)
	assert.Empty(t, grid)
}
