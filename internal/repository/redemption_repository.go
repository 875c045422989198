package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackmart/storefront/internal/service"
	"github.com/hackmart/storefront/pkg/database"
)

// RedemptionRepository provides data access for the coupon redemption log.
// The log is append-only; the unique constraint on (user_id, coupon_id,
// season) is what closes the double-grant race on rank-prize coupons.
type RedemptionRepository struct {
	pool PoolInterface
}

// NewRedemptionRepository creates a new RedemptionRepository with the given pool.
func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// NewRedemptionRepositoryWithPool creates a RedemptionRepository with a
// custom pool interface. This is primarily used for testing.
func NewRedemptionRepositoryWithPool(pool PoolInterface) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// Exists reports whether the user has already redeemed the coupon in the
// given season. Read-only; used by the validate path.
func (r *RedemptionRepository) Exists(ctx context.Context, userID, couponID, season string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupon_redemptions
			WHERE user_id = $1 AND coupon_id = $2 AND season = $3
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, couponID, season).Scan(&exists); err != nil {
		return false, fmt.Errorf("check redemption: %w", err)
	}
	return exists, nil
}

// Insert appends a redemption row within a transaction.
// Returns service.ErrCouponAlreadyUsed if the user already redeemed this
// coupon in this season; the unique constraint is the arbiter under
// concurrency, not the prior Exists check.
func (r *RedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error {
	query := `INSERT INTO coupon_redemptions (user_id, coupon_id, season) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, userID, couponID, season)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return service.ErrCouponAlreadyUsed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}
