// ABOUTME: Home feed CLI commands
// ABOUTME: Shows today's prioritized actions and marks them done
package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/feed"
	"github.com/harperreed/dofo/models"
)

// HomeCommand prints the greeting, progress, and pending actions.
func HomeCommand(env *Env, args []string) error {
	fs := env.flags("home")
	all := fs.Bool("all", false, "Also show completed actions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := ""
	if env.State != nil {
		prefs, err := env.State.Preferences()
		if err != nil {
			env.logger().Warn("failed to read preferences", zap.Error(err))
		}
		name = prefs.Name
	}

	f, err := feed.Build(context.Background(), env.Set.Actions, name, env.now())
	if err != nil {
		return err
	}

	w := env.out()
	greeting := f.Greeting
	if f.Name != "" {
		greeting += ", " + f.Name
	}
	_, _ = fmt.Fprintln(w, env.title(greeting))
	_, _ = fmt.Fprintf(w, "%s (%d%% done)\n\n", f.Headline(), f.Progress)

	printItems(env, f.Pending)
	if *all && len(f.Completed) > 0 {
		_, _ = fmt.Fprintln(w, "\nCompleted")
		printItems(env, f.Completed)
	}
	return nil
}

func printItems(env *Env, items []feed.Item) {
	if len(items) == 0 {
		return
	}
	tw := tabwriter.NewWriter(env.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPRIORITY\tACTION\tPERSON\tDUE")
	for _, it := range items {
		due := it.DueLabel
		if due == "" {
			due = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Priority, it.Title, it.PersonName, due)
	}
	_ = tw.Flush()
}

// DoneCommand marks a daily action complete.
func DoneCommand(env *Env, args []string) error {
	fs := env.flags("done")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("action ID required")
	}

	ctx := context.Background()
	id := fs.Arg(0)
	if err := env.Set.Actions.Complete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("action %s not found", id)
		}
		return fmt.Errorf("failed to complete action: %w", err)
	}

	f, err := feed.Build(ctx, env.Set.Actions, "", env.now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.out(), "✓ Done. %s (%d%% done)\n", f.Headline(), f.Progress)
	return nil
}
