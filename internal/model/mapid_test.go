package model

import (
	"errors"
	"testing"
)

// TestParseMapID tests parsing of canonical map ID strings.
func TestParseMapID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		wantCommunity string
		wantSequence  int
		wantErr       error
	}{
		{
			name:          "valid zero-padded ID",
			input:         "001-01",
			wantCommunity: "001",
			wantSequence:  1,
		},
		{
			name:          "valid ID with two-digit sequence",
			input:         "007-65",
			wantCommunity: "007",
			wantSequence:  65,
		},
		{
			name:          "community width is preserved",
			input:         "0001-05",
			wantCommunity: "0001",
			wantSequence:  5,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrEmptyMapID,
		},
		{
			name:    "no separator",
			input:   "00101",
			wantErr: ErrInvalidMapID,
		},
		{
			name:    "two separators",
			input:   "001-01-02",
			wantErr: ErrInvalidMapID,
		},
		{
			name:    "non-numeric community",
			input:   "abc-01",
			wantErr: ErrInvalidCommunity,
		},
		{
			name:    "missing community",
			input:   "-01",
			wantErr: ErrInvalidCommunity,
		},
		{
			name:    "non-numeric sequence",
			input:   "001-xx",
			wantErr: ErrInvalidSequence,
		},
		{
			name:    "zero sequence",
			input:   "001-00",
			wantErr: ErrInvalidSequence,
		},
		{
			name:    "sequence above the sheet range",
			input:   "001-100",
			wantErr: ErrInvalidSequence,
		},
		{
			name:    "negative sequence",
			input:   "001--1",
			wantErr: ErrInvalidMapID,
		},
		{
			name:    "missing sequence",
			input:   "001-",
			wantErr: ErrInvalidSequence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := ParseMapID(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Community() != tt.wantCommunity {
				t.Errorf("expected community %q, got %q", tt.wantCommunity, id.Community())
			}
			if id.Sequence() != tt.wantSequence {
				t.Errorf("expected sequence %d, got %d", tt.wantSequence, id.Sequence())
			}
		})
	}
}

// TestMapIDString verifies the canonical string form.
func TestMapIDString(t *testing.T) {
	t.Parallel()

	t.Run("sequence is zero-padded to two digits", func(t *testing.T) {
		t.Parallel()
		id := MustParseMapID("002-3")
		if id.String() != "002-03" {
			t.Errorf("expected %q, got %q", "002-03", id.String())
		}
	})

	t.Run("community is never widened", func(t *testing.T) {
		t.Parallel()
		id, err := NewMapID("07", 9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.String() != "07-09" {
			t.Errorf("expected %q, got %q", "07-09", id.String())
		}
	})

	t.Run("round trip preserves canonical form", func(t *testing.T) {
		t.Parallel()
		id := MustParseMapID("001-42")
		again := MustParseMapID(id.String())
		if !id.Equals(again) {
			t.Errorf("round trip changed value: %v vs %v", id, again)
		}
	})
}

// TestNewMapID tests direct construction.
func TestNewMapID(t *testing.T) {
	t.Parallel()

	t.Run("valid construction", func(t *testing.T) {
		t.Parallel()
		id, err := NewMapID("003", 12)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.String() != "003-12" {
			t.Errorf("expected %q, got %q", "003-12", id.String())
		}
	})

	t.Run("rejects non-numeric community", func(t *testing.T) {
		t.Parallel()
		if _, err := NewMapID("00x", 1); !errors.Is(err, ErrInvalidCommunity) {
			t.Errorf("expected ErrInvalidCommunity, got %v", err)
		}
	})

	t.Run("rejects zero sequence", func(t *testing.T) {
		t.Parallel()
		if _, err := NewMapID("001", 0); !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
	})

	t.Run("rejects sequence above MaxSequence", func(t *testing.T) {
		t.Parallel()
		if _, err := NewMapID("001", MaxSequence+1); !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("expected ErrInvalidSequence, got %v", err)
		}
	})
}

// TestMapIDSameCommunity verifies community comparison.
func TestMapIDSameCommunity(t *testing.T) {
	t.Parallel()

	a := MustParseMapID("001-01")
	b := MustParseMapID("001-47")
	c := MustParseMapID("002-01")

	if !a.SameCommunity(b) {
		t.Error("expected 001-01 and 001-47 to share a community")
	}
	if a.SameCommunity(c) {
		t.Error("expected 001-01 and 002-01 to be in different communities")
	}
}

// TestMapIDNeighbor tests the bounded neighbor computation used by the
// extractor's fallback pass.
func TestMapIDNeighbor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		id     string
		offset int
		want   string
		ok     bool
	}{
		{name: "plus one", id: "001-07", offset: 1, want: "001-08", ok: true},
		{name: "minus one", id: "001-07", offset: -1, want: "001-06", ok: true},
		{name: "plus ten", id: "001-07", offset: 10, want: "001-17", ok: true},
		{name: "minus ten below range", id: "001-07", offset: -10, ok: false},
		{name: "upper bound", id: "001-89", offset: 10, want: "001-99", ok: true},
		{name: "above range", id: "001-90", offset: 10, ok: false},
		{name: "lower bound", id: "001-02", offset: -1, want: "001-01", ok: true},
		{name: "below range", id: "001-01", offset: -1, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := MustParseMapID(tt.id).Neighbor(tt.offset)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.String())
			}
		})
	}
}

// TestMapIDZero verifies zero-value detection.
func TestMapIDZero(t *testing.T) {
	t.Parallel()

	var zero MapID
	if !zero.IsZero() {
		t.Error("expected zero value to report IsZero")
	}
	if MustParseMapID("001-01").IsZero() {
		t.Error("expected parsed ID not to report IsZero")
	}
}

// TestMustParseMapIDPanics verifies that MustParseMapID panics on bad input.
func TestMustParseMapIDPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid ID")
		}
	}()
	MustParseMapID("not-an-id")
}
