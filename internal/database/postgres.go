package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gocloud.dev/postgres"
	_ "gocloud.dev/postgres/awspostgres"
	_ "gocloud.dev/postgres/gcppostgres"

	"github.com/kiasamouie/loopy/internal/models"
)

// Repository defines the interface for database operations
type Repository interface {
	Close() error

	// Cards
	UpsertCards(ctx context.Context, rows []models.CardRow) error
	GetCardIDByEmail(ctx context.Context, email string) (string, error)
	IncrementStamps(ctx context.Context, loopyID string, stamps int) error

	// Campaigns
	GetAnyCampaignID(ctx context.Context) (string, error)
}

// PostgresRepository handles database operations
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new repository instance
func NewRepository(ctx context.Context, databaseURL string, logger *zap.Logger) (Repository, error) {
	// Retry connection with exponential backoff
	var db *sql.DB
	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		db, err = postgres.Open(ctx, databaseURL)
		if err == nil {
			// Test the connection
			if err = db.PingContext(ctx); err == nil {
				break
			}
			db.Close()
		}
		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * time.Second
			logger.Warn("Failed to connect to database, retrying...", zap.Int("attempt", i+1), zap.Duration("wait", waitTime), zap.Error(err))
			time.Sleep(waitTime)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	return &PostgresRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// UpsertCards bulk-upserts normalized card rows keyed by loopy_id in a
// single transaction. Later values overwrite earlier ones for the same
// key; there is no versioning.
func (r *PostgresRepository) UpsertCards(ctx context.Context, rows []models.CardRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback card upsert transaction", zap.Error(rbErr))
			}
		}
	}()

	query := `
		INSERT INTO cards (
			loopy_id, campaign_id, status, current_stamps,
			total_stamps_earned, total_rewards_earned, total_rewards_redeemed,
			created, updated, email, first_name, last_name,
			mobile_number, date_of_birth, postcode
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (loopy_id) DO UPDATE
		SET campaign_id = EXCLUDED.campaign_id,
		    status = EXCLUDED.status,
		    current_stamps = EXCLUDED.current_stamps,
		    total_stamps_earned = EXCLUDED.total_stamps_earned,
		    total_rewards_earned = EXCLUDED.total_rewards_earned,
		    total_rewards_redeemed = EXCLUDED.total_rewards_redeemed,
		    created = EXCLUDED.created,
		    updated = EXCLUDED.updated,
		    email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    mobile_number = EXCLUDED.mobile_number,
		    date_of_birth = EXCLUDED.date_of_birth,
		    postcode = EXCLUDED.postcode
	`

	for _, row := range rows {
		if _, err = tx.ExecContext(ctx, query,
			row.LoopyID,
			row.CampaignID,
			row.Status,
			row.CurrentStamps,
			row.TotalStampsEarned,
			row.TotalRewardsEarned,
			row.TotalRewardsRedeemed,
			row.Created,
			row.Updated,
			row.Email,
			row.FirstName,
			row.LastName,
			row.MobileNumber,
			row.DateOfBirth,
			row.Postcode,
		); err != nil {
			r.logger.Error("Failed to upsert card", zap.String("loopy_id", row.LoopyID), zap.Error(err))
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Failed to commit card upsert transaction", zap.Error(err))
		return err
	}

	return nil
}

// GetCardIDByEmail resolves a card's external id from a customer email.
// Returns an empty string (no error) when no card matches.
func (r *PostgresRepository) GetCardIDByEmail(ctx context.Context, email string) (string, error) {
	query := `
		SELECT loopy_id
		FROM cards
		WHERE email = $1
		LIMIT 1
	`

	var loopyID string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&loopyID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to get card by email", zap.String("email", email), zap.Error(err))
		return "", err
	}

	return loopyID, nil
}

// IncrementStamps invokes the server-side atomic increment procedure for a
// card's local stamp counter. The external platform remains the source of
// truth; callers treat a failure here as a reconciliation signal, not a
// request failure.
func (r *PostgresRepository) IncrementStamps(ctx context.Context, loopyID string, stamps int) error {
	query := `SELECT increment_stamps($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, loopyID, stamps); err != nil {
		r.logger.Error("Failed to increment stamps", zap.String("loopy_id", loopyID), zap.Int("stamps", stamps), zap.Error(err))
		return err
	}
	return nil
}

// GetAnyCampaignID returns the id of any known campaign, or an empty
// string (no error) when the campaigns table is empty.
func (r *PostgresRepository) GetAnyCampaignID(ctx context.Context) (string, error) {
	query := `
		SELECT loopy_id
		FROM campaigns
		LIMIT 1
	`

	var loopyID string
	err := r.db.QueryRowContext(ctx, query).Scan(&loopyID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to get campaign id", zap.Error(err))
		return "", err
	}

	return loopyID, nil
}
