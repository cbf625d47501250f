// ABOUTME: Search box CLI commands
// ABOUTME: Runs a query through intent classification and prints results or the captured note
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dofo/intent"
	"github.com/harperreed/dofo/search"
)

// SearchCommand searches people and notes, captures a note, or shows advice.
func SearchCommand(env *Env, args []string) error {
	fs := env.flags("search")
	explain := fs.Bool("explain", false, "Show which keyword decided the intent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine := search.NewEngine(env.Set.People, env.Set.Catalog, env.logger())
	resp, err := engine.Run(context.Background(), strings.Join(fs.Args(), " "), env.now())
	if err != nil {
		return err
	}

	w := env.out()
	if resp.Query == "" {
		_, _ = fmt.Fprintln(w, "Try one of these:")
		for _, in := range []intent.Intent{intent.Search, intent.Add, intent.Ask} {
			_, _ = fmt.Fprintf(w, "  %s\n", in)
			for _, s := range resp.Suggestions[in] {
				_, _ = fmt.Fprintf(w, "    %s\n", s)
			}
		}
		return nil
	}

	if *explain {
		printExplain(env, resp.Intent, resp.Keyword)
	}

	if resp.Intent == intent.Add {
		if resp.Captured == nil {
			_, _ = fmt.Fprintf(w, "✗ %s\n", resp.Results[0].Description)
			return nil
		}
		_, _ = fmt.Fprintf(w, "✓ %s: %s\n", resp.Results[0].Title, resp.Captured.Content)
		return nil
	}

	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(w, "No results")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TYPE\tTITLE\tDETAIL")
	for _, r := range resp.Results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Type, r.Title, r.Description)
	}
	return tw.Flush()
}

// ClassifyCommand prints the intent of text without acting on it.
func ClassifyCommand(env *Env, args []string) error {
	fs := env.flags("classify")
	explain := fs.Bool("explain", false, "Show which keyword decided the intent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m := intent.Default().Explain(strings.Join(fs.Args(), " "))
	if *explain {
		printExplain(env, m.Intent, m.Keyword)
		return nil
	}
	_, _ = fmt.Fprintln(env.out(), m.Intent)
	return nil
}

func printExplain(env *Env, in intent.Intent, keyword string) {
	if keyword == "" {
		_, _ = fmt.Fprintf(env.out(), "intent: %s (no keyword matched)\n", in)
		return
	}
	_, _ = fmt.Fprintf(env.out(), "intent: %s (matched %q)\n", in, keyword)
}
