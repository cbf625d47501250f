// ABOUTME: Onboarding and profile CLI commands
// ABOUTME: Writes the onboarding flag and preferences through the state store
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/dofo/models"
)

// OnboardCommand records first-run preferences and marks onboarding complete.
func OnboardCommand(env *Env, args []string) error {
	fs := env.flags("onboard")
	reset := fs.Bool("reset", false, "Clear the onboarding flag so it runs again")
	name := fs.String("name", "", "What should we call you")
	tone := fs.String("tone", "", "Default message tone (casual, formal, warm, professional)")
	language := fs.String("language", "", "Language (en, hi)")
	nudge := fs.String("nudge", "", "Nudge intensity (low, medium, high)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := env.out()
	if *reset {
		if err := env.State.ResetOnboarding(); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "✓ Onboarding reset")
		return nil
	}

	prefs, err := env.State.Preferences()
	if err != nil {
		return err
	}
	if *name != "" {
		prefs.Name = *name
	}
	if *tone != "" {
		prefs.DefaultTone = *tone
	}
	if *language != "" {
		prefs.Language = *language
	}
	if *nudge != "" {
		prefs.NudgeIntensity = *nudge
	}
	if err := env.State.SavePreferences(prefs); err != nil {
		return err
	}
	if err := env.State.CompleteOnboarding(); err != nil {
		return err
	}

	greeting := "Welcome to DoFo"
	if prefs.Name != "" {
		greeting += ", " + prefs.Name
	}
	_, _ = fmt.Fprintln(w, env.title(greeting))
	_, _ = fmt.Fprintln(w, "Run `dofo connect google` to import your contacts, or `dofo home` to see today.")
	return nil
}

// ProfileShowCommand prints preferences and today's check-in questions.
func ProfileShowCommand(env *Env, args []string) error {
	fs := env.flags("profile show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs, err := env.State.Preferences()
	if err != nil {
		return err
	}
	done, err := env.State.OnboardingComplete()
	if err != nil {
		return err
	}

	w := env.out()
	_, _ = fmt.Fprintln(w, env.title("PROFILE"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	printPrefs(tw, prefs, done)
	if err := tw.Flush(); err != nil {
		return err
	}

	questions, err := env.Set.Catalog.ListQuestions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}
	if n := min(prefs.DailyQuestionLimit, len(questions)); n > 0 {
		_, _ = fmt.Fprintln(w, "\nToday's questions:")
		for _, q := range questions[:n] {
			_, _ = fmt.Fprintf(w, "  • %s\n", q.Text)
		}
	}
	return nil
}

// ProfileSetCommand updates one preference.
func ProfileSetCommand(env *Env, args []string) error {
	fs := env.flags("profile set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: dofo profile set <key> <value>")
	}

	if _, err := env.State.Set(fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.out(), "✓ %s = %s\n", fs.Arg(0), fs.Arg(1))
	return nil
}

func printPrefs(tw *tabwriter.Writer, p models.UserPreferences, onboarded bool) {
	name := p.Name
	if name == "" {
		name = "-"
	}
	_, _ = fmt.Fprintf(tw, "name\t%s\n", name)
	_, _ = fmt.Fprintf(tw, "nudge\t%s\n", p.NudgeIntensity)
	_, _ = fmt.Fprintf(tw, "quiet hours\t%s-%s\n", p.QuietHours.Start, p.QuietHours.End)
	_, _ = fmt.Fprintf(tw, "language\t%s\n", p.Language)
	_, _ = fmt.Fprintf(tw, "tone\t%s\n", p.DefaultTone)
	_, _ = fmt.Fprintf(tw, "notifications\t%t\n", p.EnableNotifications)
	_, _ = fmt.Fprintf(tw, "questions\t%d per day\n", p.DailyQuestionLimit)
	_, _ = fmt.Fprintf(tw, "onboarded\t%t\n", onboarded)
}
