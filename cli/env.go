// ABOUTME: Shared dependencies for CLI commands
// ABOUTME: Holds the stores, state, config, and output writer every command prints to
package cli

import (
	"flag"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/dofo/config"
	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
)

// Env is what commands run against. Imports is nil in demo mode.
type Env struct {
	Set     store.Set
	State   *state.Store
	Imports *db.ImportLog
	Config  *config.Config
	Logger  *zap.Logger
	Out     io.Writer
	Now     func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) out() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return os.Stdout
}

func (e *Env) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

func (e *Env) policy() urgency.Policy {
	if e.Config != nil {
		return e.Config.Urgency.Policy()
	}
	return urgency.DefaultPolicy()
}

func (e *Env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.out())
	return fs
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

// title styles s only when printing to a terminal.
func (e *Env) title(s string) string {
	if isTerminal(e.out()) {
		return titleStyle.Render(s)
	}
	return s
}

// openBrowser attempts to open url in the default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
