package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFallbackRunnerListsCommands(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Non-TTY environment detected.") {
		t.Errorf("missing non-TTY notice:\n%s", out)
	}
	for _, c := range fallbackCommands {
		if !strings.Contains(out, c.command) {
			t.Errorf("missing %q:\n%s", c.command, out)
		}
	}
}

func TestKeyMapBindingsHaveHelp(t *testing.T) {
	km := DefaultKeyMap
	for name, b := range map[string]interface{ Keys() []string }{
		"NextTab":    km.NextTab,
		"Refresh":    km.Refresh,
		"Logout":     km.Logout,
		"ToggleMode": km.ToggleMode,
	} {
		if len(b.Keys()) == 0 {
			t.Errorf("%s has no keys", name)
		}
	}
}
