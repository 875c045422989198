package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, c *model.Coupon) error
	getByCodeFn          func(ctx context.Context, code string) (*model.Coupon, error)
	getByCodeForUpdateFn func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error)
	incrementUsageFn     func(ctx context.Context, tx database.TxQuerier, code string) error
	listFn               func(ctx context.Context) ([]model.Coupon, error)
	deleteFn             func(ctx context.Context, id string) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, c)
	}
	return nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
	if m.getByCodeForUpdateFn != nil {
		return m.getByCodeForUpdateFn(ctx, tx, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, code string) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, tx, code)
	}
	return nil
}

func (m *mockCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockRedemptionRepository is a mock implementation of RedemptionRepositoryInterface.
type mockRedemptionRepository struct {
	existsFn func(ctx context.Context, userID, couponID, season string) (bool, error)
	insertFn func(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error
}

func (m *mockRedemptionRepository) Exists(ctx context.Context, userID, couponID, season string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, couponID, season)
	}
	return false, nil
}

func (m *mockRedemptionRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, userID, couponID, season)
	}
	return nil
}

// mockRanker is a mock implementation of Ranker.
type mockRanker struct {
	rankFn func(ctx context.Context, userID, seasonCode, game string) (int, error)
}

func (m *mockRanker) Rank(ctx context.Context, userID, seasonCode, game string) (int, error) {
	if m.rankFn != nil {
		return m.rankFn(ctx, userID, seasonCode, game)
	}
	return 1, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func intPtr(i int) *int { return &i }

func activeCoupon(code string, discount, limit, used int) *model.Coupon {
	return &model.Coupon{
		ID:              "coupon-" + code,
		Code:            code,
		DiscountPercent: discount,
		StartDate:       time.Now().Add(-24 * time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		UsageLimit:      limit,
		UsageCount:      used,
	}
}

const (
	testUser   = "user-001"
	testSeason = "W02-2026-AUG"
)

func TestValidate_Top5_EligibleAndUnused(t *testing.T) {
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 3, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	redemptionRepo := &mockRedemptionRepository{
		existsFn: func(ctx context.Context, userID, couponID, season string) (bool, error) {
			return false, nil
		},
	}

	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, redemptionRepo, ranker)
	offer, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)

	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, "top5hacker", offer.Code)
	assert.Equal(t, 50, offer.DiscountPercent, "top5hacker grants a fixed 50%")
}

func TestValidate_Top5_CodeIsCaseInsensitive(t *testing.T) {
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 1, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			assert.Equal(t, "top5hacker", code, "lookup must use the lowercased code")
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, ranker)

	offer, err := svc.Validate(context.Background(), "ToP5HaCkEr", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, "top5hacker", offer.Code)
}

func TestValidate_Top5_NoRankThisSeason(t *testing.T) {
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 0, ErrScoreNotFound
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, &mockRedemptionRepository{}, ranker)

	offer, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)

	require.Error(t, err)
	assert.Nil(t, offer)
	assert.True(t, errors.Is(err, ErrNoRank), "a user with no score has no rank, not a worst rank")
}

func TestValidate_Top5_RankTooLow(t *testing.T) {
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 6, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, &mockRedemptionRepository{}, ranker)

	offer, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)

	require.Error(t, err)
	assert.Nil(t, offer)

	var rankErr *RankIneligibleError
	require.True(t, errors.As(err, &rankErr), "rank refusal must carry the rank")
	assert.Equal(t, 6, rankErr.Rank)
}

func TestValidate_Top5_Rank6IsEligibleForTop10(t *testing.T) {
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 6, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop10Hacker, 20, model.UnlimitedUsage, 0), nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, ranker)

	offer, err := svc.Validate(context.Background(), "top10hacker", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, 20, offer.DiscountPercent, "top10hacker grants a fixed 20%")
}

func TestValidate_Top5_AlreadyUsedThisSeason(t *testing.T) {
	// Rank is eligible, but the redemption log already holds a row for this
	// (user, coupon, season). The refusal must be the "already used" reason,
	// not the rank one.
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 2, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	redemptionRepo := &mockRedemptionRepository{
		existsFn: func(ctx context.Context, userID, couponID, season string) (bool, error) {
			assert.Equal(t, testUser, userID)
			assert.Equal(t, testSeason, season)
			return true, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, redemptionRepo, ranker)

	offer, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)

	require.Error(t, err)
	assert.Nil(t, offer)
	assert.True(t, errors.Is(err, ErrCouponAlreadyUsed))
}

func TestValidate_Top5_RankCheckedBeforeRedemptionLog(t *testing.T) {
	// An ineligible user who also happens to have a redemption row must hear
	// "rank too low", so the redemption log must not even be consulted.
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 9, nil
		},
	}
	logConsulted := false
	redemptionRepo := &mockRedemptionRepository{
		existsFn: func(ctx context.Context, userID, couponID, season string) (bool, error) {
			logConsulted = true
			return true, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, redemptionRepo, ranker)

	_, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)

	var rankErr *RankIneligibleError
	require.True(t, errors.As(err, &rankErr))
	assert.False(t, logConsulted, "redemption log must be checked after rank eligibility")
}

func TestValidate_ProbeDoesNotWrite(t *testing.T) {
	ranker := &mockRanker{}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	inserted := false
	redemptionRepo := &mockRedemptionRepository{
		insertFn: func(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error {
			inserted = true
			return nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, redemptionRepo, ranker)

	// Probe the same code three times, as a browsing user would.
	for i := 0; i < 3; i++ {
		offer, err := svc.Validate(context.Background(), "top5hacker", testUser, testSeason)
		require.NoError(t, err)
		require.NotNil(t, offer)
	}

	assert.False(t, inserted, "validation must never consume the one-time grant")
}

func TestValidate_OrdinaryCoupon_Valid(t *testing.T) {
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			assert.Equal(t, "summer10", code)
			return activeCoupon("summer10", 10, 100, 57), nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	offer, err := svc.Validate(context.Background(), "SUMMER10", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, "summer10", offer.Code)
	assert.Equal(t, 10, offer.DiscountPercent)
}

func TestValidate_OrdinaryCoupon_NotFound(t *testing.T) {
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Validate(context.Background(), "nosuchcode", testUser, testSeason)

	assert.True(t, errors.Is(err, ErrCouponNotFound))
}

func TestValidate_OrdinaryCoupon_NotStartedAndExpired(t *testing.T) {
	future := activeCoupon("earlybird", 15, model.UnlimitedUsage, 0)
	future.StartDate = time.Now().Add(time.Hour)
	future.EndDate = time.Now().Add(48 * time.Hour)

	past := activeCoupon("lastyear", 15, model.UnlimitedUsage, 0)
	past.StartDate = time.Now().Add(-48 * time.Hour)
	past.EndDate = time.Now().Add(-time.Hour)

	coupons := map[string]*model.Coupon{"earlybird": future, "lastyear": past}
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return coupons[code], nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Validate(context.Background(), "earlybird", testUser, testSeason)
	assert.True(t, errors.Is(err, ErrCouponNotStarted), "future window must report not-started, not a generic failure")

	_, err = svc.Validate(context.Background(), "lastyear", testUser, testSeason)
	assert.True(t, errors.Is(err, ErrCouponExpired))
}

func TestValidate_OrdinaryCoupon_UsageExhausted(t *testing.T) {
	// Exhaustion reports regardless of date validity: the coupon below is
	// also expired, but the caller must hear the usage-limit reason.
	c := activeCoupon("summer10", 10, 50, 50)
	c.EndDate = time.Now().Add(-time.Hour)

	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return c, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Validate(context.Background(), "summer10", testUser, testSeason)

	assert.True(t, errors.Is(err, ErrCouponExhausted))
}

func TestValidate_OrdinaryCoupon_UnlimitedSkipsUsageCheck(t *testing.T) {
	c := activeCoupon("forever", 5, model.UnlimitedUsage, 1_000_000)
	couponRepo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Coupon, error) {
			return c, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	offer, err := svc.Validate(context.Background(), "forever", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, 5, offer.DiscountPercent)
}

func TestValidate_MissingInput(t *testing.T) {
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Validate(context.Background(), "", testUser, testSeason)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = svc.Validate(context.Background(), "summer10", "", testSeason)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestRedeem_Top5_Success(t *testing.T) {
	committed := false
	tx := &mockTx{
		commitFn: func(ctx context.Context) error {
			committed = true
			return nil
		},
	}
	pool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 4, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeForUpdateFn: func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	var insertedSeason string
	redemptionRepo := &mockRedemptionRepository{
		insertFn: func(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error {
			insertedSeason = season
			return nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(pool, couponRepo, redemptionRepo, ranker)

	offer, err := svc.Redeem(context.Background(), "top5hacker", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, 50, offer.DiscountPercent)
	assert.Equal(t, testSeason, insertedSeason)
	assert.True(t, committed, "redemption must commit the transaction")
}

func TestRedeem_Top5_DuplicateLosesRace(t *testing.T) {
	// The unique constraint on (user, coupon, season) is the arbiter: a
	// second redeem surfaces as already-used and never commits.
	committed := false
	tx := &mockTx{
		commitFn: func(ctx context.Context) error {
			committed = true
			return nil
		},
	}
	pool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 3, nil
		},
	}
	couponRepo := &mockCouponRepository{
		getByCodeForUpdateFn: func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
			return activeCoupon(model.CodeTop5Hacker, 50, model.UnlimitedUsage, 0), nil
		},
	}
	redemptionRepo := &mockRedemptionRepository{
		insertFn: func(ctx context.Context, tx database.TxQuerier, userID, couponID, season string) error {
			return ErrCouponAlreadyUsed
		},
	}
	svc := NewCouponServiceWithTxBeginner(pool, couponRepo, redemptionRepo, ranker)

	offer, err := svc.Redeem(context.Background(), "top5hacker", testUser, testSeason)

	require.Error(t, err)
	assert.Nil(t, offer)
	assert.True(t, errors.Is(err, ErrCouponAlreadyUsed))
	assert.False(t, committed, "losing redeem must not commit")
}

func TestRedeem_Top5_RankRecheckedAtCommit(t *testing.T) {
	// Rank at validate time is advisory; if the leaderboard moved, the
	// redeem must refuse before touching the transaction.
	began := false
	pool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			began = true
			return &mockTx{}, nil
		},
	}
	ranker := &mockRanker{
		rankFn: func(ctx context.Context, userID, seasonCode, game string) (int, error) {
			return 7, nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(pool, &mockCouponRepository{}, &mockRedemptionRepository{}, ranker)

	_, err := svc.Redeem(context.Background(), "top5hacker", testUser, testSeason)

	var rankErr *RankIneligibleError
	require.True(t, errors.As(err, &rankErr))
	assert.Equal(t, 7, rankErr.Rank)
	assert.False(t, began, "ineligible redeem should not open a transaction")
}

func TestRedeem_OrdinaryCoupon_IncrementsUsage(t *testing.T) {
	committed := false
	tx := &mockTx{
		commitFn: func(ctx context.Context) error {
			committed = true
			return nil
		},
	}
	pool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}
	couponRepo := &mockCouponRepository{
		getByCodeForUpdateFn: func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
			return activeCoupon("summer10", 10, 100, 42), nil
		},
	}
	incremented := false
	couponRepo.incrementUsageFn = func(ctx context.Context, tx database.TxQuerier, code string) error {
		incremented = true
		return nil
	}
	svc := NewCouponServiceWithTxBeginner(pool, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	offer, err := svc.Redeem(context.Background(), "summer10", testUser, testSeason)

	require.NoError(t, err)
	assert.Equal(t, 10, offer.DiscountPercent)
	assert.True(t, incremented, "usage count must move at redemption, not validation")
	assert.True(t, committed)
}

func TestRedeem_OrdinaryCoupon_ExhaustedUnderLock(t *testing.T) {
	pool := &mockTxBeginner{}
	couponRepo := &mockCouponRepository{
		getByCodeForUpdateFn: func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
			return activeCoupon("summer10", 10, 50, 50), nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(pool, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Redeem(context.Background(), "summer10", testUser, testSeason)

	assert.True(t, errors.Is(err, ErrCouponExhausted))
}

func TestRedeem_CouponNotFound(t *testing.T) {
	pool := &mockTxBeginner{}
	couponRepo := &mockCouponRepository{
		getByCodeForUpdateFn: func(ctx context.Context, tx database.TxQuerier, code string) (*model.Coupon, error) {
			return nil, ErrCouponNotFound
		},
	}
	svc := NewCouponServiceWithTxBeginner(pool, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Redeem(context.Background(), "nosuchcode", testUser, testSeason)

	assert.True(t, errors.Is(err, ErrCouponNotFound))
}

func TestCreate_Success(t *testing.T) {
	var captured *model.Coupon
	couponRepo := &mockCouponRepository{
		insertFn: func(ctx context.Context, c *model.Coupon) error {
			captured = c
			return nil
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	start := time.Now()
	end := start.Add(72 * time.Hour)
	coupon, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:            "  NewYear25 ",
		DiscountPercent: intPtr(25),
		StartDate:       start,
		EndDate:         end,
		UsageLimit:      intPtr(500),
	})

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "newyear25", coupon.Code, "codes are stored lowercase and trimmed")
	assert.Equal(t, 25, coupon.DiscountPercent)
	assert.Equal(t, 500, coupon.UsageLimit)
}

func TestCreate_InvalidRequests(t *testing.T) {
	svc := NewCouponServiceWithTxBeginner(nil, &mockCouponRepository{}, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Create(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:       "x",
		UsageLimit: intPtr(1),
	})
	assert.True(t, errors.Is(err, ErrInvalidRequest), "nil discount must be rejected")

	start := time.Now()
	_, err = svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:            "x",
		DiscountPercent: intPtr(10),
		StartDate:       start,
		EndDate:         start.Add(-time.Hour),
		UsageLimit:      intPtr(1),
	})
	assert.True(t, errors.Is(err, ErrInvalidRequest), "end before start must be rejected")
}

func TestCreate_Duplicate(t *testing.T) {
	couponRepo := &mockCouponRepository{
		insertFn: func(ctx context.Context, c *model.Coupon) error {
			return ErrCouponExists
		},
	}
	svc := NewCouponServiceWithTxBeginner(nil, couponRepo, &mockRedemptionRepository{}, &mockRanker{})

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:            "dupe",
		DiscountPercent: intPtr(10),
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(time.Hour),
		UsageLimit:      intPtr(1),
	})

	assert.True(t, errors.Is(err, ErrCouponExists))
}
