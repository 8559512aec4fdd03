// Package campaign resolves the default campaign id used when an operation
// omits an explicit one. The resolution order is an explicit list of tiers
// composed first-success-wins, rather than a silent fallback chain: a tier
// either finds an id, misses, or errors, and a miss never masks the tiers
// behind it.
package campaign

import (
	"context"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/pkg/errors"
)

// Tier is one lookup strategy. ok reports whether id was found; err is a
// tier-local failure and does not abort the chain.
type Tier func(ctx context.Context) (id string, ok bool, err error)

// Resolver composes tiers in order.
type Resolver struct {
	tiers  []Tier
	logger *zap.Logger
}

// NewResolver creates a resolver over the given tiers. Order matters:
// cheap local tiers first, the live platform fetch last.
func NewResolver(logger *zap.Logger, tiers ...Tier) *Resolver {
	return &Resolver{
		tiers:  tiers,
		logger: logger,
	}
}

// Resolve returns the first id any tier finds. A tier error is logged and
// the next tier is consulted; when every tier misses the typed
// errors.ErrNoCampaign is returned, wrapping the last tier error seen.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	var lastErr error
	for _, tier := range r.tiers {
		id, ok, err := tier(ctx)
		if err != nil {
			r.logger.Warn("Campaign resolver tier failed", zap.Error(err))
			lastErr = err
			continue
		}
		if ok {
			return id, nil
		}
	}

	if lastErr != nil {
		return "", errors.Wrap(lastErr, errors.ErrNoCampaign)
	}
	return "", errors.ErrNoCampaign
}
