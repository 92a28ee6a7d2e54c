// Package testutil provides test helper utilities for ringcheck tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TempHome creates a temporary ringcheck home directory with the given files
// and points RINGCHECK_HOME at it for the duration of the test.
// Files is a map of relative path -> content. Directories are created as needed.
func TempHome(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	t.Setenv("RINGCHECK_HOME", dir)
	t.Setenv("RINGCHECK_API_URL", "")
	return dir
}

// ConfigFor returns config.yaml contents pointing the client at baseURL.
func ConfigFor(baseURL string) map[string]string {
	return map[string]string{
		"config.yaml": fmt.Sprintf(`version: 1
api:
  base_url: %s
  timeout: 5
auth:
  password_min_length: 5
  default_region: US
log:
  enabled: true
  level: debug
`, baseURL),
	}
}

// EmptyHome returns no files.
func EmptyHome() map[string]string {
	return map[string]string{}
}
