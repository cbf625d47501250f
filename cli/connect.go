// ABOUTME: Google connection CLI commands
// ABOUTME: Runs OAuth once, then imports contacts and calendar birthdays
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/harperreed/dofo/connect"
	"github.com/harperreed/dofo/timefmt"
)

var errDemoMode = errors.New("not available in demo mode")

// ConnectGoogleCommand authorizes DoFo with Google and imports contacts and birthdays.
func ConnectGoogleCommand(ctx context.Context, env *Env, args []string) error {
	fs := env.flags("connect google")
	reauth := fs.Bool("reauth", false, "Sign in again even if a token is saved")
	noBrowser := fs.Bool("no-browser", false, "Print the sign-in URL without opening a browser")
	skipCalendar := fs.Bool("skip-calendar", false, "Import contacts only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if env.Imports == nil || env.Config == nil {
		return fmt.Errorf("connect google: %w", errDemoMode)
	}

	cfg, err := connect.NewOAuthConfig(env.Config.Google.ClientID, env.Config.Google.ClientSecret)
	if err != nil {
		return err
	}

	w := env.out()
	path := connect.TokenPath(env.Config.CredentialsDir())
	if _, err := os.Stat(path); err != nil || *reauth {
		open := openBrowser
		if *noBrowser {
			open = nil
		}
		token, err := connect.Authorize(ctx, cfg, w, open)
		if err != nil {
			return err
		}
		if err := connect.SaveToken(path, token); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "✓ Authenticated\n✓ Token saved to %s\n\n", path)
	}

	client, err := connect.HTTPClient(ctx, cfg, path)
	if err != nil {
		return fmt.Errorf("no usable Google token, run 'dofo connect google --reauth': %w", err)
	}

	contacts, err := connect.NewContactPager(ctx, client)
	if err != nil {
		return err
	}
	importer := &connect.ContactsImporter{
		People:  env.Set.People,
		Log:     env.Imports,
		Cadence: env.Config.Urgency.DefaultCadence,
		Logger:  env.logger(),
		Now:     env.Now,
	}
	_, _ = fmt.Fprintln(w, "Importing Google Contacts...")
	stats, err := importer.Import(ctx, contacts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "  ✓ %d fetched, %d new, %d matched, %d already imported", stats.Fetched, stats.Created, stats.Matched, stats.Skipped)
	if stats.Failed > 0 {
		_, _ = fmt.Fprintf(w, ", %d failed", stats.Failed)
	}
	_, _ = fmt.Fprintln(w)

	if *skipCalendar {
		return nil
	}

	events, err := connect.NewEventPager(ctx, client)
	if err != nil {
		return err
	}
	birthdays := &connect.BirthdayImporter{
		People: env.Set.People,
		Log:    env.Imports,
		Logger: env.logger(),
		Now:    env.Now,
	}
	_, _ = fmt.Fprintln(w, "Reading birthdays from Google Calendar...")
	bstats, err := birthdays.Import(ctx, events)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "  ✓ %d events, %d birthdays updated\n", bstats.Fetched, bstats.Updated)
	reasons := make([]string, 0, len(bstats.Skipped))
	for r := range bstats.Skipped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		_, _ = fmt.Fprintf(w, "    skipped %d: %s\n", bstats.Skipped[r], r)
	}
	return nil
}

// ConnectStatusCommand shows when each Google import last ran.
func ConnectStatusCommand(ctx context.Context, env *Env, args []string) error {
	fs := env.flags("connect status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if env.Imports == nil {
		return fmt.Errorf("connect status: %w", errDemoMode)
	}

	states, err := env.Imports.States(ctx)
	if err != nil {
		return err
	}

	w := env.out()
	if len(states) == 0 {
		_, _ = fmt.Fprintln(w, "Not connected. Run 'dofo connect google' to import contacts.")
		return nil
	}

	now := env.now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SERVICE\tSTATUS\tLAST IMPORT\tERROR")
	for _, st := range states {
		last, err := timefmt.FormatRelative(st.LastSyncTime, now, timefmt.Past)
		if err != nil {
			return err
		}
		msg := st.ErrorMessage
		if msg == "" {
			msg = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Service, st.Status, last, msg)
	}
	return tw.Flush()
}
