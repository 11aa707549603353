package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/esmgis/platcrawl/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway records fetch calls and fails the configured IDs.
type fakeGateway struct {
	mu      sync.Mutex
	failing map[string]bool
	calls   []string
}

func (g *fakeGateway) Fetch(_ context.Context, id model.MapID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, id.String())
	if g.failing[id.String()] {
		return errors.New("origin returned 404")
	}
	return nil
}

func (g *fakeGateway) callCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == id {
			n++
		}
	}
	return n
}

// fakeSource serves canned page texts and fails the configured IDs.
type fakeSource struct {
	erroring map[string]bool
}

func (s *fakeSource) PageTexts(id model.MapID) ([]string, error) {
	if s.erroring[id.String()] {
		return nil, errors.New("unreadable document")
	}
	return []string{id.String()}, nil
}

// fakeFinder returns a fixed reference list per sheet.
type fakeFinder struct {
	refs map[string][]string
}

func (f *fakeFinder) Extract(_ []string, self model.MapID) []model.MapID {
	var out []model.MapID
	for _, ref := range f.refs[self.String()] {
		out = append(out, model.MustParseMapID(ref))
	}
	return out
}

// TestCrawl tests the breadth-first traversal.
func TestCrawl(t *testing.T) {
	t.Parallel()

	t.Run("follows references and fetches each ID once", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeGateway{failing: map[string]bool{"001-04": true}}
		finder := &fakeFinder{refs: map[string][]string{
			"001-01": {"001-02", "001-03"},
			"001-02": {"001-01", "001-03", "001-04"},
			"001-03": {},
		}}
		c := NewCrawler(gateway, &fakeSource{}, finder, WithLogger(testLogger()))

		result, err := c.Crawl(context.Background(), model.MustParseMapID("001-01"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Processed != 3 {
			t.Errorf("expected 3 processed, got %d", result.Processed)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failed, got %d", result.Failed)
		}

		for _, id := range []string{"001-01", "001-02", "001-03", "001-04"} {
			if n := gateway.callCount(id); n != 1 {
				t.Errorf("expected exactly one fetch for %s, got %d", id, n)
			}
		}
	})

	t.Run("treats extraction failure as no references", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeGateway{}
		source := &fakeSource{erroring: map[string]bool{"001-01": true}}
		finder := &fakeFinder{refs: map[string][]string{
			"001-01": {"001-02"},
		}}
		c := NewCrawler(gateway, source, finder, WithLogger(testLogger()))

		result, err := c.Crawl(context.Background(), model.MustParseMapID("001-01"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Processed != 1 || result.Failed != 0 {
			t.Errorf("expected 1 processed and 0 failed, got %+v", result)
		}
		if n := gateway.callCount("001-02"); n != 0 {
			t.Errorf("references must not be followed past an unreadable sheet, got %d fetches", n)
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewCrawler(&fakeGateway{}, &fakeSource{}, &fakeFinder{}, WithLogger(testLogger()))
		_, err := c.Crawl(ctx, model.MustParseMapID("001-01"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestProbe tests the systematic sweep.
func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("stops after the failure cutoff", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeGateway{failing: map[string]bool{
			"002-04": true, "002-05": true, "002-06": true,
		}}
		index := &fakeIndex{}
		p := NewProber(gateway, index,
			WithProberLogger(testLogger()),
			WithMaxAttempts(100),
			WithCutoff(2),
		)

		got, err := p.Probe(context.Background(), "002")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"002-01", "002-02", "002-03"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i, id := range got {
			if id.String() != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], id)
			}
		}

		if n := gateway.callCount("002-05"); n != 1 {
			t.Errorf("expected the second consecutive failure to be attempted, got %d", n)
		}
		if n := gateway.callCount("002-06"); n != 0 {
			t.Errorf("sweep must stop at the cutoff, but 002-06 was fetched %d times", n)
		}
	})

	t.Run("stored sheets count as discovered and reset the streak", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeGateway{failing: map[string]bool{
			"003-01": true, "003-03": true, "003-04": true,
		}}
		index := &fakeIndex{stored: map[string]bool{"003-02": true}}
		p := NewProber(gateway, index,
			WithProberLogger(testLogger()),
			WithMaxAttempts(100),
			WithCutoff(2),
		)

		got, err := p.Probe(context.Background(), "003")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != 1 || got[0].String() != "003-02" {
			t.Errorf("expected discovered [003-02], got %v", got)
		}
		if n := gateway.callCount("003-02"); n != 0 {
			t.Errorf("stored sheet must not be fetched, got %d fetches", n)
		}
		if n := gateway.callCount("003-04"); n != 1 {
			t.Errorf("streak must reset at the stored sheet, expected 003-04 to be tried once, got %d", n)
		}
		if n := gateway.callCount("003-05"); n != 0 {
			t.Errorf("sweep must stop after 003-03 and 003-04 fail, but 003-05 was fetched %d times", n)
		}
	})

	t.Run("never probes past the sequence space", func(t *testing.T) {
		t.Parallel()

		gateway := &fakeGateway{}
		p := NewProber(gateway, &fakeIndex{},
			WithProberLogger(testLogger()),
			WithMaxAttempts(150),
		)

		got, err := p.Probe(context.Background(), "004")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != model.MaxSequence {
			t.Errorf("expected %d discoveries, got %d", model.MaxSequence, len(got))
		}
		if got[len(got)-1].String() != "004-99" {
			t.Errorf("expected last discovery 004-99, got %s", got[len(got)-1])
		}
	})
}

// fakeIndex answers existence queries from a fixed set.
type fakeIndex struct {
	stored map[string]bool
}

func (i *fakeIndex) Exists(id model.MapID) bool {
	return i.stored[id.String()]
}
