package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mpetrenko/webharness/internal/settings"
)

func TestResolveTarget(t *testing.T) {
	for _, name := range []string{"BROWSER", "HEADLESS", "SCREENSHOT_ON_FAILURE"} {
		t.Setenv(name, "")
	}

	path := filepath.Join(t.TempDir(), "appsettings.json")
	doc := `{
		"TestSettings": {
			"BaseUrl": "https://automationexercise.com",
			"Environments": {
				"staging": "https://staging.automationexercise.com"
			}
		}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing settings document: %v", err)
	}

	st, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	tests := []struct {
		name        string
		environment string
		explicit    string
		want        string
	}{
		{
			name: "base url by default",
			want: "https://automationexercise.com",
		},
		{
			name:        "named environment",
			environment: "staging",
			want:        "https://staging.automationexercise.com",
		},
		{
			name:        "unknown environment falls back to base url",
			environment: "qa",
			want:        "https://automationexercise.com",
		},
		{
			name:        "explicit url wins",
			environment: "staging",
			explicit:    "https://example.com/checkout",
			want:        "https://example.com/checkout",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveTarget(st, tc.environment, tc.explicit); got != tc.want {
				t.Fatalf("resolveTarget = %q, want %q", got, tc.want)
			}
		})
	}
}
