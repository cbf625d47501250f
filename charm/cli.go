// ABOUTME: CLI commands for syncing DoFo state through Charm KV
// ABOUTME: SSH key auth, so there is no login or logout step

package charm

import (
	"flag"
	"fmt"
	"io"
)

// SyncStatusCommand shows which backend is in use and how much state it holds.
func SyncStatusCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	fs.SetOutput(w)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := c.Config()
	fmt.Fprintln(w, "Sync Status")
	fmt.Fprintln(w, "───────────")
	if c.Local() {
		fmt.Fprintln(w, "Backend:   local (not linked)")
	} else {
		fmt.Fprintln(w, "Backend:   charm")
		fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
		fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)
	}

	if keys, err := c.Keys(); err == nil {
		fmt.Fprintf(w, "Keys:      %d\n", len(keys))
	}

	if c.Local() {
		fmt.Fprintln(w, "\nSet DOFO_SYNC=true to share onboarding and preferences across devices.")
		return nil
	}

	id, err := c.ID()
	if err != nil {
		fmt.Fprintln(w, "\nStatus: Not connected")
		fmt.Fprintln(w, "Charm uses SSH keys for authentication - no login required!")
		return nil //nolint:nilerr // not connected is a valid state
	}
	fmt.Fprintln(w, "\nStatus: Connected to Charm Cloud")
	fmt.Fprintf(w, "ID:        %s\n", id)
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	fs.SetOutput(w)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.Local() {
		fmt.Fprintln(w, "Sync is not linked; state is stored locally only.")
		return nil
	}

	if *verbose {
		fmt.Fprintf(w, "Syncing with %s...\n", c.Config().Host)
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(w, "✓ Synced")
	return nil
}

// SetAutoSyncCommand enables or disables auto-sync.
func SetAutoSyncCommand(w io.Writer, cfg *Config, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	fs.SetOutput(w)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *enable && *disable:
		return fmt.Errorf("--enable and --disable are mutually exclusive")
	case *enable:
		if err := cfg.SetAutoSync(true); err != nil {
			return fmt.Errorf("failed to enable auto-sync: %w", err)
		}
		fmt.Fprintln(w, "✓ Auto-sync enabled")
	case *disable:
		if err := cfg.SetAutoSync(false); err != nil {
			return fmt.Errorf("failed to disable auto-sync: %w", err)
		}
		fmt.Fprintln(w, "✓ Auto-sync disabled")
	default:
		fmt.Fprintln(w, "Usage: dofo sync auto --enable|--disable")
	}
	return nil
}

// SyncWipeCommand deletes all device state: the onboarding flag and preferences.
func SyncWipeCommand(w io.Writer, c *Client, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	fs.SetOutput(w)
	confirm := fs.Bool("confirm", false, "Confirm the wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		fmt.Fprintln(w, "This deletes your preferences and onboarding on this device.")
		fmt.Fprintln(w, "\nTo confirm, run:")
		fmt.Fprintln(w, "  dofo sync wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	fmt.Fprintln(w, "✓ State wiped. Run 'dofo onboard' to set up again.")
	return nil
}
