package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"github.com/esmgis/platcrawl/internal/model"
)

var (
	// fullFormPattern matches a complete map ID such as "001-07".
	fullFormPattern = regexp.MustCompile(`\b0\d{2}-\d{2}\b`)

	// shortFormPattern matches a bare numeral that may be a sheet
	// reference within the current community. Four-digit runs (years,
	// parcel numbers) never match because of the word boundaries.
	shortFormPattern = regexp.MustCompile(`\b\d{2,3}\b`)
)

// Extractor finds candidate map ID references in page text.
type Extractor struct {
	// shortMin and shortMax bound the sheet numbers accepted from the
	// short-form pass. Numerals outside the range are treated as noise
	// (survey measurements, years, acreage figures).
	shortMin int
	shortMax int

	// sparseThreshold is the result count below which the neighbor
	// fallback kicks in.
	sparseThreshold int

	// neighborOffsets are the sequence offsets guessed for sparse sheets.
	neighborOffsets []int

	// logger reports extraction statistics.
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithShortRange sets the accepted sheet-number range for the
// short-form pass.
func WithShortRange(min, max int) ExtractorOption {
	return func(e *Extractor) {
		e.shortMin = min
		e.shortMax = max
	}
}

// WithSparseThreshold sets the minimum reference count under which the
// neighbor fallback is applied.
func WithSparseThreshold(n int) ExtractorOption {
	return func(e *Extractor) {
		e.sparseThreshold = n
	}
}

// WithNeighborOffsets sets the sequence offsets used by the sparse
// fallback.
func WithNeighborOffsets(offsets []int) ExtractorOption {
	return func(e *Extractor) {
		e.neighborOffsets = offsets
	}
}

// WithExtractorLogger sets a custom logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor with the default heuristics.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		shortMin:        1,
		shortMax:        50,
		sparseThreshold: 3,
		neighborOffsets: []int{-1, 1, 10, -10},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Extract returns the candidate references found in the page texts of
// the sheet identified by self.
//
// The result contains only IDs in self's community, never self itself,
// is free of duplicates, and is sorted by canonical string. The sparse
// fallback is judged on the raw union of the two regex passes, before
// the community filter: a sheet dense with out-of-community references
// is a well-annotated sheet, not a sparse one.
func (e *Extractor) Extract(pageTexts []string, self model.MapID) []model.MapID {
	seen := make(map[model.MapID]struct{})

	for _, text := range pageTexts {
		e.extractFullForm(text, seen)
		e.extractShortForm(text, self, seen)
	}
	delete(seen, self)

	if len(seen) < e.sparseThreshold {
		e.logger.Debug("sparse extraction, adding positional neighbors",
			"id", self.String(), "found", len(seen))
		e.addNeighbors(seen, self)
	}

	refs := make([]model.MapID, 0, len(seen))
	for id := range seen {
		if !id.SameCommunity(self) {
			continue
		}
		refs = append(refs, id)
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].String() < refs[j].String()
	})
	return refs
}

// extractFullForm collects complete "0XX-YY" references.
func (e *Extractor) extractFullForm(text string, seen map[model.MapID]struct{}) {
	for _, match := range fullFormPattern.FindAllString(text, -1) {
		id, err := model.ParseMapID(match)
		if err != nil {
			continue
		}
		seen[id] = struct{}{}
	}
}

// extractShortForm collects bare sheet numerals and resolves them within
// self's community. A numeral directly preceded by '-' is the sequence
// half of a full-form reference already captured by the other pass, so
// it is skipped.
func (e *Extractor) extractShortForm(text string, self model.MapID, seen map[model.MapID]struct{}) {
	for _, loc := range shortFormPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == '-' {
			continue
		}

		n, err := strconv.Atoi(text[loc[0]:loc[1]])
		if err != nil || n < e.shortMin || n > e.shortMax {
			continue
		}

		id, err := model.NewMapID(self.Community(), n)
		if err != nil {
			continue
		}
		seen[id] = struct{}{}
	}
}

// addNeighbors adds in-range positional neighbors of self to the
// candidate set.
func (e *Extractor) addNeighbors(seen map[model.MapID]struct{}, self model.MapID) {
	for _, offset := range e.neighborOffsets {
		if neighbor, ok := self.Neighbor(offset); ok {
			seen[neighbor] = struct{}{}
		}
	}
}
