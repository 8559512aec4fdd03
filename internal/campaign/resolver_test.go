package campaign_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/campaign"
	"github.com/kiasamouie/loopy/pkg/errors"
)

func hit(id string) campaign.Tier {
	return func(ctx context.Context) (string, bool, error) { return id, true, nil }
}

func miss() campaign.Tier {
	return func(ctx context.Context) (string, bool, error) { return "", false, nil }
}

func fail(err error) campaign.Tier {
	return func(ctx context.Context) (string, bool, error) { return "", false, err }
}

func TestResolve_FirstSuccessWins(t *testing.T) {
	called := false
	second := func(ctx context.Context) (string, bool, error) {
		called = true
		return "camp-2", true, nil
	}

	resolver := campaign.NewResolver(zap.NewNop(), hit("camp-1"), second)

	id, err := resolver.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "camp-1", id)
	assert.False(t, called, "later tiers must not run after a hit")
}

func TestResolve_MissFallsThrough(t *testing.T) {
	resolver := campaign.NewResolver(zap.NewNop(), miss(), miss(), hit("camp-3"))

	id, err := resolver.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "camp-3", id)
}

func TestResolve_TierErrorContinues(t *testing.T) {
	resolver := campaign.NewResolver(zap.NewNop(), fail(stderrors.New("datastore down")), hit("camp-4"))

	id, err := resolver.Resolve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "camp-4", id)
}

func TestResolve_AllMiss(t *testing.T) {
	resolver := campaign.NewResolver(zap.NewNop(), miss(), miss())

	_, err := resolver.Resolve(context.Background())
	var svcErr *errors.ServiceError
	if assert.ErrorAs(t, err, &svcErr) {
		assert.Equal(t, "NO_CAMPAIGN", svcErr.Code)
		assert.Equal(t, 404, svcErr.Status)
	}
}

func TestResolve_AllMissWrapsLastError(t *testing.T) {
	cause := stderrors.New("connection refused")
	resolver := campaign.NewResolver(zap.NewNop(), miss(), fail(cause))

	_, err := resolver.Resolve(context.Background())
	var svcErr *errors.ServiceError
	if assert.ErrorAs(t, err, &svcErr) {
		assert.Equal(t, "NO_CAMPAIGN", svcErr.Code)
	}
	assert.ErrorIs(t, err, cause)
}
