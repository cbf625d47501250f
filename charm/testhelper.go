// ABOUTME: Test utilities for creating isolated state clients
// ABOUTME: Each client gets its own BadgerDB under t.TempDir

package charm

import (
	"path/filepath"
	"testing"
)

// NewTestClient creates a local client in a temporary directory. It is closed
// automatically when the test finishes.
func NewTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewLocalClient(filepath.Join(t.TempDir(), AppName))
	if err != nil {
		t.Fatalf("Failed to open test client: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return c
}
