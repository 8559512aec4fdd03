package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// campaignTTL bounds how long a resolved default campaign id is shared
// across instances before it is re-resolved.
const campaignTTL = 15 * time.Minute

// CampaignCache shares the resolved default campaign id across server
// instances. It sits between the in-memory tier and the datastore tier of
// the resolver chain.
type CampaignCache interface {
	Close() error
	GetDefaultCampaign(ctx context.Context) (string, error)
	SetDefaultCampaign(ctx context.Context, campaignID string) error
}

// Cache handles Redis operations
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache creates a new cache instance
func NewCache(redisURL string, logger *zap.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// GetDefaultCampaign retrieves the shared default campaign id. Returns an
// empty string (no error) on a miss.
func (c *Cache) GetDefaultCampaign(ctx context.Context) (string, error) {
	data, err := c.client.Get(ctx, "campaign:default").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		c.logger.Error("Failed to get default campaign from cache", zap.Error(err))
		return "", err
	}
	return data, nil
}

// SetDefaultCampaign stores the shared default campaign id.
func (c *Cache) SetDefaultCampaign(ctx context.Context, campaignID string) error {
	if err := c.client.Set(ctx, "campaign:default", campaignID, campaignTTL).Err(); err != nil {
		c.logger.Error("Failed to set default campaign in cache", zap.String("campaign_id", campaignID), zap.Error(err))
		return err
	}
	return nil
}
