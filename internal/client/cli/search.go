package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopsage/internal/client/search"
)

// Search runs query through the searcher, prints the offers and records the
// top ones in the user's history.
func (a *App) Search(ctx context.Context, query string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in to search for products")
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		fmt.Fprintln(a.out, "Please enter a product name to search")
		return nil
	}

	fmt.Fprintln(a.out, "Searching...")
	results, err := a.searcher.Search(ctx, query)
	if errors.Is(err, search.ErrEmptyQuery) {
		fmt.Fprintln(a.out, "Please enter a product name to search")
		return nil
	}
	if err != nil {
		return err
	}

	for i, r := range results {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, r)
	}
	fmt.Fprintf(a.out, "Found %d genuine products for %q\n", len(results), query)

	if _, err := a.history.RecordSearch(ctx, query, search.Top(results, search.SnapshotSize)); err != nil {
		return fmt.Errorf("search done but not saved to history: %w", err)
	}
	return nil
}
