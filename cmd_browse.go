package main

import (
	"fmt"
	"io"

	"quill/app/feed"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/spf13/cobra"
)

var (
	browseCategory string
	browseQuery    string
	browseSort     string
	browseRestore  string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Print the feed of the external source",
	Long: `Composes the feed for a category, search query and sort order and
prints it. Without --query the posts are filtered by category and sorted;
with --query the external search results are printed as returned.

Local posts come from the backup named by --restore. Without it the local
store is empty and only external posts are shown.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseCategory, "category", feed.AllCategories, "category to show")
	browseCmd.Flags().StringVarP(&browseQuery, "query", "q", "", "search query")
	browseCmd.Flags().StringVar(&browseSort, "sort", string(feed.SortLatest), "latest, oldest, title_asc or title_desc")
	browseCmd.Flags().StringVar(&browseRestore, "restore", "", "merge the local posts of a backup taken at /api/admin/backup")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openBrowseStore(browseRestore)
	if err != nil {
		return err
	}
	defer store.Close()

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	f := feed.New(store, source, logger)
	view, ok := f.Update(ctx, feed.Params{
		Category: browseCategory,
		Query:    browseQuery,
		SortBy:   feed.SortKey(browseSort),
	})
	if !ok {
		return ctx.Err()
	}
	printView(cmd.OutOrStdout(), view)
	f.Wait()
	return nil
}

func openBrowseStore(restore string) (*repositories.Store, error) {
	if restore == "" {
		return repositories.NewStore(repositories.Seed{})
	}
	return openStore(cfg, restore)
}

func printView(w io.Writer, view feed.View) {
	if view.SearchMode {
		fmt.Fprintf(w, "Search results for %q (%d)\n", view.Params.Query, view.Total)
	} else {
		fmt.Fprintf(w, "Category %s, sorted by %s (%d)\n", view.Params.Category, view.Params.SortBy, view.Total)
	}
	if view.Featured == nil {
		fmt.Fprintln(w, "No posts.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "* %s\n", line(view.Featured))
	for _, post := range view.Posts {
		fmt.Fprintf(w, "  %s\n", line(post))
	}
}

func line(p *models.Post) string {
	return fmt.Sprintf("#%d %s [%s]", p.ID, p.Title, p.Category)
}
