package embedding

import (
	"strconv"
	"testing"
)

func makeTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = "chunk " + strconv.Itoa(i)
	}
	return texts
}

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		max       int
		wantSizes []int
	}{
		{"empty input", 0, 64, nil},
		{"single partial batch", 10, 64, []int{10}},
		{"exact multiple", 128, 64, []int{64, 64}},
		{"remainder batch", 130, 64, []int{64, 64, 2}},
		{"batch of one", 3, 1, []int{1, 1, 1}},
		{"non-positive max falls back to default", 65, 0, []int{64, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := splitBatches(makeTexts(tt.total), tt.max)
			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			for i, b := range batches {
				if len(b) != tt.wantSizes[i] {
					t.Errorf("batch %d has %d texts, want %d", i, len(b), tt.wantSizes[i])
				}
			}
		})
	}
}

func TestSplitBatches_PreservesOrder(t *testing.T) {
	texts := makeTexts(150)

	var flattened []string
	for _, b := range splitBatches(texts, 64) {
		flattened = append(flattened, b...)
	}

	if len(flattened) != len(texts) {
		t.Fatalf("flattened %d texts, want %d", len(flattened), len(texts))
	}
	for i := range texts {
		if flattened[i] != texts[i] {
			t.Fatalf("order broken at %d: got %q, want %q", i, flattened[i], texts[i])
		}
	}
}

func TestNewOpenAI_Options(t *testing.T) {
	o := NewOpenAI("sk-test", "text-embedding-3-small", WithMaxBatchSize(16))
	if o.maxBatch != 16 {
		t.Errorf("maxBatch = %d, want 16", o.maxBatch)
	}

	// Invalid batch size keeps the default.
	o = NewOpenAI("sk-test", "text-embedding-3-small", WithMaxBatchSize(-1))
	if o.maxBatch != DefaultMaxBatchSize {
		t.Errorf("maxBatch = %d, want default %d", o.maxBatch, DefaultMaxBatchSize)
	}
}
