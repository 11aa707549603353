package crawler

import (
	"context"
	"log/slog"

	"github.com/esmgis/platcrawl/internal/model"
)

// StoreIndex answers existence queries against the document store.
type StoreIndex interface {
	Exists(id model.MapID) bool
}

// Prober sweeps a community's sequence numbers in order to find sheets
// the reference graph never points at.
type Prober struct {
	gateway     Gateway
	index       StoreIndex
	throttle    *Throttle
	logger      *slog.Logger
	maxAttempts int
	cutoff      int
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberThrottle sets the shared request throttle.
func WithProberThrottle(t *Throttle) ProberOption {
	return func(p *Prober) {
		p.throttle = t
	}
}

// WithProberLogger sets a custom logger.
func WithProberLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithMaxAttempts sets the highest sequence number to try.
func WithMaxAttempts(n int) ProberOption {
	return func(p *Prober) {
		p.maxAttempts = n
	}
}

// WithCutoff sets the consecutive-failure count that ends the sweep.
func WithCutoff(n int) ProberOption {
	return func(p *Prober) {
		p.cutoff = n
	}
}

// NewProber creates a Prober.
func NewProber(gateway Gateway, index StoreIndex, opts ...ProberOption) *Prober {
	p := &Prober{
		gateway:     gateway,
		index:       index,
		maxAttempts: 100,
		cutoff:      10,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.throttle == nil {
		p.throttle = NewThrottle(0)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Probe tries sequence numbers 1..maxAttempts for the community and
// returns the IDs found, in sequence order.
//
// An ID already in the store counts as discovered without a network
// round-trip and resets the failure streak: stored sheets say nothing
// about whether the next number exists. The sweep ends early once the
// streak reaches the cutoff, on the assumption that the sequence has a
// sparse tail rather than large interior gaps.
func (p *Prober) Probe(ctx context.Context, community string) ([]model.MapID, error) {
	var discovered []model.MapID
	streak := 0

	p.logger.Info("starting systematic sweep",
		"community", community, "maxAttempts", p.maxAttempts)

	for seq := 1; seq <= p.maxAttempts; seq++ {
		if err := ctx.Err(); err != nil {
			return discovered, err
		}

		id, err := model.NewMapID(community, seq)
		if err != nil {
			// Sequence space exhausted.
			break
		}

		if p.index.Exists(id) {
			p.logger.Debug("already stored", "id", id.String())
			discovered = append(discovered, id)
			streak = 0
			continue
		}

		if err := p.gateway.Fetch(ctx, id); err != nil {
			if ctx.Err() != nil {
				return discovered, ctx.Err()
			}
			streak++
			p.logger.Debug("probe miss", "id", id.String(), "streak", streak)
			if streak >= p.cutoff {
				p.logger.Info("failure cutoff reached, ending sweep",
					"community", community, "lastTried", id.String())
				break
			}
		} else {
			p.logger.Info("probe hit", "id", id.String())
			discovered = append(discovered, id)
			streak = 0
		}

		if err := p.throttle.Wait(ctx); err != nil {
			return discovered, err
		}
	}

	p.logger.Info("systematic sweep complete",
		"community", community, "found", len(discovered))

	return discovered, nil
}
