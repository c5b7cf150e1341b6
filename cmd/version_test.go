package cmd

import "testing"

func TestResolveVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}

	// "dev" builds fall through to module build info; in a test binary
	// that yields either the module version or the "dev" placeholder,
	// never an empty string.
	version = "dev"
	if got := resolveVersion(); got == "" {
		t.Error("resolveVersion() returned empty string for dev build")
	}
}
