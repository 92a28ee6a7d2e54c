package tui

import (
	"fmt"
	"io"
)

// fallbackCommands lists the subcommands that cover each interactive view.
var fallbackCommands = []struct {
	command string
	purpose string
}{
	{"ringcheck login", "sign in with your phone number"},
	{"ringcheck signup", "create an account"},
	{"ringcheck dashboard", "show interaction statistics"},
	{"ringcheck search <name or number>", "look up a number"},
	{"ringcheck contacts list|add", "manage contacts"},
	{"ringcheck spam stats|report", "view or report spam numbers"},
}

// FallbackRunner handles non-TTY execution by guiding users to CLI commands.
type FallbackRunner struct {
	out io.Writer
}

// NewFallbackRunner creates a new FallbackRunner writing to out.
func NewFallbackRunner(out io.Writer) *FallbackRunner {
	return &FallbackRunner{out: out}
}

// Run prints the non-interactive alternatives.
func (f *FallbackRunner) Run() error {
	fmt.Fprintln(f.out, "Non-TTY environment detected.")
	fmt.Fprintln(f.out, "Use one of the non-interactive commands instead:")
	for _, c := range fallbackCommands {
		fmt.Fprintf(f.out, "  %-36s %s\n", c.command, c.purpose)
	}
	return nil
}
