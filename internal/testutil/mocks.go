// Package testutil provides testify mocks for the repository and campaign
// cache interfaces, shared by client and handler tests.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kiasamouie/loopy/internal/models"
)

// MockRepository is a mock implementation of database.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepository) UpsertCards(ctx context.Context, rows []models.CardRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockRepository) GetCardIDByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) IncrementStamps(ctx context.Context, loopyID string, stamps int) error {
	args := m.Called(ctx, loopyID, stamps)
	return args.Error(0)
}

func (m *MockRepository) GetAnyCampaignID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCampaignCache is a mock implementation of cache.CampaignCache
type MockCampaignCache struct {
	mock.Mock
}

func (m *MockCampaignCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCampaignCache) GetDefaultCampaign(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCampaignCache) SetDefaultCampaign(ctx context.Context, campaignID string) error {
	args := m.Called(ctx, campaignID)
	return args.Error(0)
}
