package cli

import (
	"context"
	"fmt"
)

func (a *App) History(context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in to view your search history")
		return nil
	}

	records := a.history.ListVisible()
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No search history yet")
		return nil
	}
	for _, r := range records {
		fmt.Fprintln(a.out, r)
		for _, s := range r.Results {
			fmt.Fprintln(a.out, "    ", s)
		}
	}
	return nil
}

func (a *App) Remove(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in to manage your search history")
		return nil
	}
	if err := a.history.RemoveRecord(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Search item has been removed from history.")
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in to manage your search history")
		return nil
	}
	if err := a.history.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Your search history has been cleared successfully.")
	return nil
}
