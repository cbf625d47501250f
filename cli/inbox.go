// ABOUTME: Inbox and insight CLI commands
// ABOUTME: Lists detected events, dismisses or acts on them, and refreshes detection
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/harperreed/dofo/insights"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
)

// InboxListCommand lists open inbox items.
func InboxListCommand(env *Env, args []string) error {
	fs := env.flags("inbox list")
	all := fs.Bool("all", false, "Include dismissed items")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := env.Set.Inbox.List(context.Background(), *all)
	if err != nil {
		return fmt.Errorf("failed to list inbox: %w", err)
	}

	w := env.out()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "Inbox zero. Nothing new.")
		return nil
	}

	now := env.now()
	for _, item := range items {
		label, _ := timefmt.FormatEventDate(item.Date, now)
		status := ""
		if item.Dismissed {
			status = " (dismissed)"
		}
		_, _ = fmt.Fprintf(w, "[%s] %s · %s%s\n", item.ID, env.title(item.Title), label, status)
		_, _ = fmt.Fprintf(w, "    %s\n", item.Description)
		for i, s := range item.SuggestedActions {
			_, _ = fmt.Fprintf(w, "    %d. %s\n", i+1, s)
		}
	}
	return nil
}

// InboxDismissCommand dismisses an inbox item.
func InboxDismissCommand(env *Env, args []string) error {
	fs := env.flags("inbox dismiss")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("inbox item ID required")
	}

	id := fs.Arg(0)
	if err := env.Set.Inbox.Dismiss(context.Background(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("inbox item %s not found", id)
		}
		return fmt.Errorf("failed to dismiss inbox item: %w", err)
	}
	_, _ = fmt.Fprintf(env.out(), "✓ Dismissed %s\n", id)
	return nil
}

// InboxActCommand turns a suggested action into a daily action.
func InboxActCommand(env *Env, args []string) error {
	fs := env.flags("inbox act")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("inbox item ID required")
	}

	choice := 1
	if fs.NArg() > 1 {
		n, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid action number %q", fs.Arg(1))
		}
		choice = n
	}

	id := fs.Arg(0)
	a, err := insights.Act(context.Background(), env.Set.Inbox, env.Set.Actions, id, choice-1)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("inbox item %s not found", id)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.out(), "✓ Added to today: %s\n", a.Title)
	return nil
}

// InsightsRefreshCommand detects new inbox items and actions.
func InsightsRefreshCommand(env *Env, args []string) error {
	fs := env.flags("insights refresh")
	dryRun := fs.Bool("dry-run", false, "Show what would be added without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	now := env.now()
	var res insights.Result
	if *dryRun {
		list, err := env.Set.People.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list people: %w", err)
		}
		inbox, err := env.Set.Inbox.List(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to list inbox: %w", err)
		}
		actions, err := env.Set.Actions.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list actions: %w", err)
		}
		res = insights.Detect(list, inbox, actions, now, env.policy())
	} else {
		r := &insights.Refresher{
			People:  env.Set.People,
			Inbox:   env.Set.Inbox,
			Actions: env.Set.Actions,
			Policy:  env.policy(),
			Logger:  env.logger(),
		}
		var err error
		if res, err = r.Refresh(ctx, now); err != nil {
			return err
		}
	}

	w := env.out()
	if len(res.Inbox) == 0 && len(res.Actions) == 0 {
		_, _ = fmt.Fprintln(w, "✓ Nothing new")
		return nil
	}

	verb := "Added"
	if *dryRun {
		verb = "Would add"
	}
	_, _ = fmt.Fprintf(w, "%s %d inbox items and %d actions\n", verb, len(res.Inbox), len(res.Actions))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, item := range res.Inbox {
		_, _ = fmt.Fprintf(tw, "  inbox\t%s\t%s\n", item.Type, item.Title)
	}
	for _, a := range res.Actions {
		_, _ = fmt.Fprintf(tw, "  action\t%s\t%s\n", a.Type, a.Title)
	}
	return tw.Flush()
}
