package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache-policy.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCachePolicy(t *testing.T) {
	path := writePolicy(t, `
endpoints:
  - endpoint: wallet.balances
    keep_unused_for: 10s
  - endpoint: spread_profiles.list
    keep_unused_for: 15m
`)

	retention, err := LoadCachePolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	if retention["wallet.balances"] != 10*time.Second {
		t.Errorf("wallet.balances = %s, want 10s", retention["wallet.balances"])
	}
	if retention["spread_profiles.list"] != 15*time.Minute {
		t.Errorf("spread_profiles.list = %s, want 15m", retention["spread_profiles.list"])
	}
}

func TestLoadCachePolicyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing endpoint", "endpoints:\n  - keep_unused_for: 10s\n", "missing endpoint"},
		{"bad duration", "endpoints:\n  - endpoint: users.list\n    keep_unused_for: soon\n", "invalid keep_unused_for"},
		{"non-positive", "endpoints:\n  - endpoint: users.list\n    keep_unused_for: 0s\n", "must be positive"},
		{"not yaml", "endpoints: [", "unable to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCachePolicy(writePolicy(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadCachePolicyMissingFile(t *testing.T) {
	if _, err := LoadCachePolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
