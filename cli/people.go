// ABOUTME: People CLI commands
// ABOUTME: List with circle stats, show one person, log interactions, and track promises
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

// PeopleListCommand lists people with a relation filter and sort order.
func PeopleListCommand(env *Env, args []string) error {
	fs := env.flags("people list")
	relation := fs.String("relation", people.FilterAll, "Filter by relation (family, close, friends, work, other, all)")
	sortBy := fs.String("sort", "", "Sort by name, lastContact, or healthScore (default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *relation != people.FilterAll && !slices.Contains(models.Relations, *relation) {
		return fmt.Errorf("unknown relation %q", *relation)
	}
	order, err := people.ParseSort(*sortBy)
	if err != nil {
		return err
	}

	all, err := env.Set.People.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	now := env.now()
	policy := env.policy()
	list := people.Filter(all, *relation)
	people.Sort(list, order)
	stats := people.Stats(all, now, policy)

	w := env.out()
	_, _ = fmt.Fprintln(w, env.title("YOUR CIRCLES"))
	_, _ = fmt.Fprintf(w, "%d people · avg health %.0f · %d overdue · %d milestones this week\n\n",
		stats.Total, stats.AverageHealth, stats.Overdue, stats.UpcomingMilestones)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tRELATION\tLAST CONTACT\tHEALTH\tNEXT")
	for i := range list {
		p := &list[i]
		st := urgency.Evaluate(p, now, policy)
		last, _ := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)
		next := "-"
		if m := p.NextMilestone; m != nil {
			countdown, _ := timefmt.FormatMilestone(&m.Date, now)
			next = fmt.Sprintf("%s (%s)", m.Description, countdown)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%d\t%s\n",
			p.ID, st.Indicator, p.Name, p.Relation, last, p.HealthScore, next)
	}
	return tw.Flush()
}

// PeopleShowCommand prints one person by id or name.
func PeopleShowCommand(env *Env, args []string) error {
	fs := env.flags("people show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID or name required")
	}

	ctx := context.Background()
	p, err := people.Resolve(ctx, env.Set.People, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	actions, err := env.Set.Actions.ListByPerson(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list actions: %w", err)
	}

	now := env.now()
	st := urgency.Evaluate(p, now, env.policy())
	last, _ := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)

	w := env.out()
	_, _ = fmt.Fprintf(w, "%s %s\n", st.Indicator, env.title(p.Name))
	_, _ = fmt.Fprintf(w, "Relation:     %s\n", p.Relation)
	if p.Email != "" {
		_, _ = fmt.Fprintf(w, "Email:        %s\n", p.Email)
	}
	if p.Phone != "" {
		_, _ = fmt.Fprintf(w, "Phone:        %s\n", p.Phone)
	}
	_, _ = fmt.Fprintf(w, "Last contact: %s (every %d days)\n", last, st.CadenceDays)
	_, _ = fmt.Fprintf(w, "Health:       %d (%s)\n", p.HealthScore, st.HealthBand)
	if st.Overdue {
		_, _ = fmt.Fprintf(w, "Overdue:      %d days past your usual rhythm\n", st.DaysOverdue)
	}
	if m := p.NextMilestone; m != nil {
		countdown, _ := timefmt.FormatMilestone(&m.Date, now)
		_, _ = fmt.Fprintf(w, "Next:         %s, %s (%s)\n", m.Description, m.Date.Format("Jan 2"), countdown)
	}
	if len(p.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "Tags:         %s\n", strings.Join(p.Tags, ", "))
	}

	if len(p.Notes) > 0 {
		_, _ = fmt.Fprintln(w, "\nNotes")
		for _, n := range p.Notes {
			_, _ = fmt.Fprintf(w, "  %s  %s\n", n.Date.Format("Jan 2"), n.Content)
		}
	}
	if open := p.OpenPromises(); len(open) > 0 {
		_, _ = fmt.Fprintln(w, "\nPromises")
		for _, pr := range open {
			due, _ := timefmt.FormatRelative(&pr.DueDate, now, timefmt.Future)
			_, _ = fmt.Fprintf(w, "  [%s] %s (%s, %s)\n", pr.ID, pr.Description, due, pr.Priority)
		}
	}
	if len(p.Interactions) > 0 {
		_, _ = fmt.Fprintln(w, "\nInteractions")
		for _, in := range p.Interactions {
			label, _ := timefmt.FormatRelative(&in.Date, now, timefmt.Past)
			_, _ = fmt.Fprintf(w, "  %-8s %-12s %s\n", in.Type, label, in.Description)
		}
	}
	if len(actions) > 0 {
		_, _ = fmt.Fprintln(w, "\nActions")
		for _, a := range actions {
			mark := " "
			if a.Completed {
				mark = "✓"
			}
			_, _ = fmt.Fprintf(w, "  %s %s (%s)\n", mark, a.Title, a.ID)
		}
	}
	return nil
}

// PeopleLogCommand records an interaction with a person.
func PeopleLogCommand(env *Env, args []string) error {
	fs := env.flags("people log")
	kind := fs.String("type", models.InteractionCall, "Interaction type (call, message, meeting, email, photo, gift)")
	desc := fs.String("desc", "", "What happened (required)")
	sentiment := fs.String("sentiment", "", "positive, neutral, or negative")
	date := fs.String("date", "", "When it happened (YYYY-MM-DD, default now)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID or name required")
	}

	at := env.now()
	if *date != "" {
		t, err := timefmt.ParseTimestamp(*date)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		at = t
	}
	in, err := people.NewInteraction(*kind, *desc, *sentiment, at)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := people.Resolve(ctx, env.Set.People, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	if err := env.Set.People.LogInteraction(ctx, p.ID, in); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	_, _ = fmt.Fprintf(env.out(), "✓ Logged %s with %s\n", in.Type, p.Name)
	return nil
}

// PromiseAddCommand records a promise made to a person.
func PromiseAddCommand(env *Env, args []string) error {
	fs := env.flags("people promise")
	desc := fs.String("desc", "", "What you promised (required)")
	due := fs.String("due", "", "Due date YYYY-MM-DD (default one week from now)")
	priority := fs.String("priority", models.PriorityMedium, "high, medium, or low")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("person ID or name required")
	}

	dueDate := env.now().Add(7 * 24 * time.Hour)
	if *due != "" {
		t, err := timefmt.ParseTimestamp(*due)
		if err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
		dueDate = t
	}
	pr, err := people.NewPromise(*desc, dueDate, *priority)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := people.Resolve(ctx, env.Set.People, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	if err := env.Set.People.AddPromise(ctx, p.ID, pr); err != nil {
		return fmt.Errorf("failed to add promise: %w", err)
	}

	label, _ := timefmt.FormatRelative(&pr.DueDate, env.now(), timefmt.Future)
	_, _ = fmt.Fprintf(env.out(), "✓ Promised %s: %s (due %s)\n", p.FirstName(), pr.Description, label)
	return nil
}

// PromiseDoneCommand marks a promise kept.
func PromiseDoneCommand(env *Env, args []string) error {
	fs := env.flags("people keep")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("promise ID required")
	}

	id := fs.Arg(0)
	if err := env.Set.People.CompletePromise(context.Background(), id, env.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("promise %s not found", id)
		}
		return fmt.Errorf("failed to complete promise: %w", err)
	}
	_, _ = fmt.Fprintln(env.out(), "✓ Promise kept")
	return nil
}
