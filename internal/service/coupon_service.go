package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/pkg/database"
)

// Rank-prize thresholds and their fixed discounts.
const (
	top5RankLimit  = 5
	top5Discount   = 50
	top10RankLimit = 10
	top10Discount  = 20
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, c *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tx database.TxQuerier, code string) error
	List(ctx context.Context) ([]model.Coupon, error)
	Delete(ctx context.Context, id string) error
}

// RedemptionRepositoryInterface defines the interface for the redemption log.
type RedemptionRepositoryInterface interface {
	Exists(ctx context.Context, userID, couponID, season string) (bool, error)
	Insert(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error
}

// Ranker computes a user's leaderboard rank for a season.
// Implemented by GameService.
type Ranker interface {
	Rank(ctx context.Context, userID, seasonCode, game string) (int, error)
}

// CouponService decides coupon eligibility and performs redemptions.
//
// Validate is read-only: probing a code during browsing never consumes a
// grant or a usage. Redeem re-checks everything inside one transaction and
// records the outcome, with the storage layer's constraints as the final
// arbiter under concurrency.
type CouponService struct {
	pool           TxBeginner
	couponRepo     CouponRepositoryInterface
	redemptionRepo RedemptionRepositoryInterface
	ranker         Ranker
}

// NewCouponService creates a new CouponService with the given pool and
// collaborators.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface, ranker Ranker) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		ranker:         ranker,
	}
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom
// TxBeginner. Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, redemptionRepo RedemptionRepositoryInterface, ranker Ranker) *CouponService {
	return &CouponService{
		pool:           pool,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		ranker:         ranker,
	}
}

// reservedDiscount returns the threshold and discount for a rank-prize code,
// or ok=false for ordinary codes.
func reservedDiscount(code string) (rankLimit, discount int, ok bool) {
	switch code {
	case model.CodeTop5Hacker:
		return top5RankLimit, top5Discount, true
	case model.CodeTop10Hacker:
		return top10RankLimit, top10Discount, true
	}
	return 0, 0, false
}

// Validate decides whether the code is redeemable for the user in the given
// season. It never writes: repeated probes while browsing must not consume
// the one-time grant or a usage.
//
// Rank-prize codes check rank first, then the redemption log, in that order;
// the two refusals carry different messages and the distinction matters to
// callers. Ordinary codes check existence, then the date window, then the
// usage cap.
func (s *CouponService) Validate(ctx context.Context, code, userID, seasonCode string) (*model.CouponOffer, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || userID == "" {
		return nil, ErrInvalidRequest
	}

	if rankLimit, discount, ok := reservedDiscount(code); ok {
		if err := s.checkRankEligibility(ctx, code, userID, seasonCode, rankLimit); err != nil {
			return nil, err
		}
		return &model.CouponOffer{Code: code, DiscountPercent: discount}, nil
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	// The usage cap wins over the date window: an exhausted coupon reports
	// exhaustion even when it is also expired.
	if coupon.Exhausted() {
		return nil, ErrCouponExhausted
	}
	if err := checkWindow(coupon, time.Now()); err != nil {
		return nil, err
	}

	return &model.CouponOffer{Code: coupon.Code, DiscountPercent: coupon.DiscountPercent}, nil
}

// checkRankEligibility applies the rank gate and then the one-use-per-season
// rule for a reserved code. Rank is checked before the redemption log so an
// ineligible user hears "rank too low" rather than "already used".
func (s *CouponService) checkRankEligibility(ctx context.Context, code, userID, seasonCode string, rankLimit int) error {
	rank, err := s.ranker.Rank(ctx, userID, seasonCode, model.GameGuessTheNumber)
	if err != nil {
		if errors.Is(err, ErrScoreNotFound) {
			return ErrNoRank
		}
		return fmt.Errorf("get rank: %w", err)
	}
	if rank > rankLimit {
		return &RankIneligibleError{Rank: rank}
	}

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		// Reserved codes are seeded at install time; a missing row is an
		// operational fault, not a user error.
		return fmt.Errorf("reserved coupon %s not seeded", code)
	}

	used, err := s.redemptionRepo.Exists(ctx, userID, coupon.ID, seasonCode)
	if err != nil {
		return fmt.Errorf("check redemption: %w", err)
	}
	if used {
		return ErrCouponAlreadyUsed
	}
	return nil
}

// checkWindow verifies now falls inside the coupon's validity window.
func checkWindow(c *model.Coupon, now time.Time) error {
	if now.Before(c.StartDate) {
		return ErrCouponNotStarted
	}
	if now.After(c.EndDate) {
		return ErrCouponExpired
	}
	return nil
}

// Redeem consumes the coupon for the user at checkout commit. The whole
// check-and-record sequence runs in one transaction:
//
//   - rank-prize codes: re-check rank, then insert into the redemption log;
//     a unique violation on (user, coupon, season) surfaces as
//     ErrCouponAlreadyUsed, so two concurrent redeems cannot both succeed.
//   - ordinary codes: lock the row (SELECT FOR UPDATE), re-check the window
//     and cap, then increment the usage count.
//
// On success the granted offer is returned so the order can price against it.
func (s *CouponService) Redeem(ctx context.Context, code, userID, seasonCode string) (*model.CouponOffer, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || userID == "" {
		return nil, ErrInvalidRequest
	}

	rankLimit, discount, reserved := reservedDiscount(code)

	if reserved {
		// Rank is advisory at validate time; re-check before committing.
		rank, err := s.ranker.Rank(ctx, userID, seasonCode, model.GameGuessTheNumber)
		if err != nil {
			if errors.Is(err, ErrScoreNotFound) {
				return nil, ErrNoRank
			}
			return nil, fmt.Errorf("get rank: %w", err)
		}
		if rank > rankLimit {
			return nil, &RankIneligibleError{Rank: rank}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	coupon, err := s.couponRepo.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}

	if reserved {
		if err := s.redemptionRepo.Insert(ctx, tx, userID, coupon.ID, seasonCode); err != nil {
			if errors.Is(err, ErrCouponAlreadyUsed) {
				return nil, ErrCouponAlreadyUsed
			}
			return nil, fmt.Errorf("insert redemption: %w", err)
		}
	} else {
		if coupon.Exhausted() {
			return nil, ErrCouponExhausted
		}
		if err := checkWindow(coupon, time.Now()); err != nil {
			return nil, err
		}
		if err := s.couponRepo.IncrementUsage(ctx, tx, code); err != nil {
			return nil, fmt.Errorf("increment usage: %w", err)
		}
		discount = coupon.DiscountPercent
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &model.CouponOffer{Code: code, DiscountPercent: discount}, nil
}

// Create creates a new coupon from the request. The code is stored lowercase.
// Returns ErrCouponExists if the code is taken, ErrInvalidRequest if the
// request is nil or incomplete.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || req.DiscountPercent == nil || req.UsageLimit == nil {
		return nil, ErrInvalidRequest
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidRequest
	}

	coupon := &model.Coupon{
		Code:            strings.ToLower(strings.TrimSpace(req.Code)),
		DiscountPercent: *req.DiscountPercent,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		UsageLimit:      *req.UsageLimit,
	}
	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// List retrieves all coupons, oldest first.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.couponRepo.List(ctx)
}

// Delete removes a coupon by id.
func (s *CouponService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidRequest
	}
	return s.couponRepo.Delete(ctx, id)
}
