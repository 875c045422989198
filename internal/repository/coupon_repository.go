package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
	"github.com/hackmart/storefront/pkg/database"
)

const couponColumns = `id, code, discount_percent, start_date, end_date, usage_limit, usage_count, created_at`

// CouponRepository provides data access for coupons using pgx.
// Coupon codes are stored lowercase; lookups normalize the input so matching
// is case-insensitive.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a CouponRepository with a custom pool
// interface. This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountPercent,
		&c.StartDate,
		&c.EndDate,
		&c.UsageLimit,
		&c.UsageCount,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert inserts a new coupon and fills in the generated id.
// Returns service.ErrCouponExists if the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_percent, start_date, end_date, usage_limit, usage_count)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		strings.ToLower(c.Code), c.DiscountPercent, c.StartDate, c.EndDate, c.UsageLimit,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	c.Code = strings.ToLower(c.Code)
	return nil
}

// GetByCode retrieves a coupon by its code, case-insensitively.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := scanCoupon(r.pool.QueryRow(ctx, query, strings.ToLower(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return c, nil
}

// GetByCodeForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE),
// serializing concurrent redemptions of the same code.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`

	c, err := scanCoupon(tx.QueryRow(ctx, query, strings.ToLower(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return c, nil
}

// IncrementUsage adds one to the coupon's usage count.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, code string) error {
	query := `UPDATE coupons SET usage_count = usage_count + 1 WHERE code = $1`

	_, err := tx.Exec(ctx, query, strings.ToLower(code))
	if err != nil {
		return fmt.Errorf("increment usage for %s: %w", code, err)
	}
	return nil
}

// List retrieves all coupons, oldest first.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(
			&c.ID, &c.Code, &c.DiscountPercent, &c.StartDate, &c.EndDate,
			&c.UsageLimit, &c.UsageCount, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}

	if coupons == nil {
		coupons = []model.Coupon{}
	}
	return coupons, nil
}

// Delete removes a coupon by id.
// Returns service.ErrCouponNotFound if no row matched.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}
