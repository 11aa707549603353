package extract

import (
	"io"
	"log/slog"
	"testing"

	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/store"
)

func quietExtractor(opts ...ExtractorOption) *Extractor {
	opts = append(opts, WithExtractorLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewExtractor(opts...)
}

func assertRefs(t *testing.T, got []model.MapID, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d references %v, got %d: %v", len(want), want, len(got), got)
	}
	for i, id := range got {
		if id.String() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], id)
		}
	}
}

// TestExtract tests the layered extraction passes.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("resolves short numerals and drops foreign communities", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-01")

		// "002" and "003" resolve within the sheet's own community.
		// "003-04" is a real reference but to another community, and its
		// sequence half "04" must not leak in as a short-form candidate.
		got := e.Extract([]string{"SEE MAPS 002 003-04"}, self)
		assertRefs(t, got, []string{"001-02", "001-03"})
	})

	t.Run("rejects lot and year numerals as noise", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-05")

		got := e.Extract([]string{"LOT 75 PARCEL 1998 BLOCK 120 02 03 04"}, self)
		assertRefs(t, got, []string{"001-02", "001-03", "001-04"})
	})

	t.Run("excludes the sheet itself", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-02")

		got := e.Extract([]string{"02 03 04 05"}, self)
		assertRefs(t, got, []string{"001-03", "001-04", "001-05"})
	})

	t.Run("deduplicates across pages", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-01")

		got := e.Extract([]string{"02 03", "03 04", "001-02"}, self)
		assertRefs(t, got, []string{"001-02", "001-03", "001-04"})
	})

	t.Run("falls back to positional neighbors on sparse sheets", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-07")

		// The only numeral is the sheet's own number, so nothing real is
		// found. Offsets -1, +1, +10 are in range; -10 would be negative.
		got := e.Extract([]string{"PLAT 07"}, self)
		assertRefs(t, got, []string{"001-06", "001-08", "001-17"})
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-50")

		got := e.Extract(nil, self)
		assertRefs(t, got, []string{"001-40", "001-49", "001-51", "001-60"})
	})

	t.Run("does not fall back when foreign references make the sheet dense", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor()
		self := model.MustParseMapID("001-01")

		// Three full-form references to another community: the sheet is
		// well annotated, so no neighbors are guessed even though the
		// same-community result is empty.
		got := e.Extract([]string{"002-01 002-02 002-03"}, self)

		want := []string{"001-02"}
		// "002" halves of the full forms also resolve as short numerals.
		assertRefs(t, got, want)
	})

	t.Run("honors tunable range and threshold", func(t *testing.T) {
		t.Parallel()
		e := quietExtractor(WithShortRange(1, 99), WithSparseThreshold(0))
		self := model.MustParseMapID("001-01")

		got := e.Extract([]string{"75"}, self)
		assertRefs(t, got, []string{"001-75"})
	})
}

// fakeReader records the path it was asked to read.
type fakeReader struct {
	path  string
	pages []string
}

func (f *fakeReader) PageTexts(path string) ([]string, error) {
	f.path = path
	return f.pages, nil
}

// TestDocumentSource tests ID-to-path resolution through the store.
func TestDocumentSource(t *testing.T) {
	t.Parallel()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	reader := &fakeReader{pages: []string{"02 03"}}
	src := NewDocumentSource(st, reader)

	id := model.MustParseMapID("004-09")
	pages, err := src.PageTexts(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0] != "02 03" {
		t.Errorf("unexpected pages: %v", pages)
	}
	if reader.path != st.Path(id) {
		t.Errorf("expected reader to receive %q, got %q", st.Path(id), reader.path)
	}
}
