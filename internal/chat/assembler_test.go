package chat

import (
	"strings"
	"testing"
)

func TestBuildContext(t *testing.T) {
	chunks := []string{"first chunk", "second chunk", "third chunk"}

	got := BuildContext(chunks)

	if !strings.HasPrefix(got, contextPreamble) {
		t.Errorf("context missing preamble: %q", got)
	}
	if !strings.HasSuffix(got, "first chunk\nsecond chunk\nthird chunk") {
		t.Errorf("chunks not newline-joined in ranked order: %q", got)
	}
}

func TestBuildContext_SingleChunk(t *testing.T) {
	got := BuildContext([]string{"only one"})
	if got != contextPreamble+"only one" {
		t.Errorf("unexpected context: %q", got)
	}
}

func TestBuildContext_NoChunks(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("expected empty context for no chunks, got %q", got)
	}
	if got := BuildContext([]string{}); got != "" {
		t.Errorf("expected empty context for empty slice, got %q", got)
	}
}

func TestBuildContext_Pure(t *testing.T) {
	chunks := []string{"a", "b"}
	first := BuildContext(chunks)
	second := BuildContext(chunks)
	if first != second {
		t.Error("BuildContext is not deterministic")
	}
	if chunks[0] != "a" || chunks[1] != "b" {
		t.Error("BuildContext mutated its input")
	}
}
