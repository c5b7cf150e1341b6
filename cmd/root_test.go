package cmd

import "testing"

func TestRootCommandRegistration(t *testing.T) {
	expected := []string{"ingest", "query", "chat", "kb", "sessions", "migrate", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("command %q is not registered on root", name)
		}
	}
}

func TestRootPersistentFlags(t *testing.T) {
	owner := rootCmd.PersistentFlags().Lookup("owner")
	if owner == nil {
		t.Fatal("missing persistent flag --owner")
	}
	if owner.DefValue != "local" {
		t.Errorf("--owner default = %q, want %q", owner.DefValue, "local")
	}

	verbose := rootCmd.PersistentFlags().Lookup("verbose")
	if verbose == nil {
		t.Fatal("missing persistent flag --verbose")
	}
	if verbose.DefValue != "false" {
		t.Errorf("--verbose default = %q, want %q", verbose.DefValue, "false")
	}
}

func TestSessionsSubcommands(t *testing.T) {
	expected := []string{"list", "delete", "set-prompt"}

	registered := make(map[string]bool)
	for _, c := range sessionsCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("sessions subcommand %q is not registered", name)
		}
	}
}

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"exactly max unchanged", "hello", 5, "hello"},
		{"long text truncated", "hello world", 8, "hello..."},
		{"newlines flattened", "line one\nline two", 60, "line one line two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewText(tt.in, tt.max); got != tt.want {
				t.Errorf("previewText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
