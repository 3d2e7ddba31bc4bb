package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestNewRunIDParsesBack(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(id.String())
	if err != nil {
		t.Fatalf("ParseRunID(%q) failed: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}
}

func TestParseRunID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"not a uuid", "run-1", true},
		{"uuid", "0190c8a4-6f1e-7c3a-9d2b-5e4f3a2b1c0d", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRunID(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestParseColumnName(t *testing.T) {
	if _, err := ParseColumnName(""); err == nil {
		t.Error("Expected error for empty column name")
	}
	col, err := ParseColumnName("NL.AncEMA")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if col.String() != "NL.AncEMA" {
		t.Errorf("Expected NL.AncEMA, got %s", col)
	}
}
