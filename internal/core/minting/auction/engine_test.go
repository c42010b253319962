package auction

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	minterconfig "github.com/mintforge/v1/internal/config/minter"
	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
	"github.com/mintforge/v1/internal/core/collab"
	"github.com/mintforge/v1/internal/core/infrastructure/clock"
	infralog "github.com/mintforge/v1/internal/core/infrastructure/log"
	memorystore "github.com/mintforge/v1/internal/core/infrastructure/storage/memory"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/types"
)

var (
	auctionCore   = common.HexToAddress("0x0000000000000000000000000000000000000031")
	auctionArtist = common.HexToAddress("0x0000000000000000000000000000000000000032")
	auctionAdmin  = common.HexToAddress("0x0000000000000000000000000000000000000033")
	auctionSelf   = common.HexToAddress("0x0000000000000000000000000000000000000034")
)

const auctionEpoch = int64(1_700_000_000)

type auctionFixture struct {
	engine *Engine
	store  *state.Store
	clock  *clock.MockClock
	key    types.ProjectKey
}

func newAuctionFixture(t *testing.T) *auctionFixture {
	t.Helper()
	kv, err := memorystore.New(memoryconfig.New(nil), infralog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	store := state.New(kv, infralog.NewNop())
	mockClock := clock.NewMockClock(time.Unix(auctionEpoch, 0))

	reg := collab.NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(auctionCore, true))
	key := types.NewProjectKey(auctionCore, 1)
	require.NoError(t, reg.RegisterProject(key, collab.ProjectParams{
		Artist:         auctionArtist,
		MaxInvocations: 100,
	}))

	options := &minterconfig.MinterOptions{
		MinHalfLifeSeconds: 45,
		MaxHalfLifeSeconds: 3600,
		MinterAddress:      auctionSelf.Hex(),
	}
	oracle := collab.NewAllowlistACL([]common.Address{auctionAdmin})

	return &auctionFixture{
		engine: New(store, mockClock, reg, oracle, options, infralog.NewNop()),
		store:  store,
		clock:  mockClock,
		key:    key,
	}
}

func configuredAuction(start, halfLife uint64) *types.AuctionConfig {
	cfg := &types.AuctionConfig{
		TimestampStart:            start,
		PriceDecayHalfLifeSeconds: halfLife,
		StartPrice:                big.NewInt(1_000_000_000_000_000_000),
		BasePrice:                 big.NewInt(100_000_000_000_000_000),
	}
	cfg.Normalize()
	return cfg
}

func TestPriceAt(t *testing.T) {
	key := types.NewProjectKey(auctionCore, 1)
	start := uint64(auctionEpoch)
	cfg := configuredAuction(start, 300)

	t.Run("起拍瞬间等于起拍价", func(t *testing.T) {
		price, err := PriceAt(key, cfg, start)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(cfg.StartPrice))
	})

	t.Run("整半衰期边界精确减半", func(t *testing.T) {
		price, err := PriceAt(key, cfg, start+300)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(big.NewInt(500_000_000_000_000_000)))

		price, err = PriceAt(key, cfg, start+600)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(big.NewInt(250_000_000_000_000_000)))
	})

	t.Run("半衰期内线性插值", func(t *testing.T) {
		// 半衰期进行到一半: 1e18 - (5e17 * 150 / 300) = 7.5e17
		price, err := PriceAt(key, cfg, start+150)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(big.NewInt(750_000_000_000_000_000)))

		// 第二个半衰期进行到1/3: 5e17 - (2.5e17 * 100 / 300)
		price, err = PriceAt(key, cfg, start+400)
		require.NoError(t, err)
		expected := big.NewInt(500_000_000_000_000_000)
		interp := new(big.Int).Div(new(big.Int).Mul(big.NewInt(250_000_000_000_000_000), big.NewInt(100)), big.NewInt(300))
		expected.Sub(expected, interp)
		assert.Zero(t, price.Cmp(expected))
	})

	t.Run("衰减到底价后钳制", func(t *testing.T) {
		// 四个半衰期后曲线价 6.25e16 低于底价 1e17
		price, err := PriceAt(key, cfg, start+1200)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(cfg.BasePrice))
	})

	t.Run("超过256个半衰期直接取底价", func(t *testing.T) {
		price, err := PriceAt(key, cfg, start+300*300)
		require.NoError(t, err)
		assert.Zero(t, price.Cmp(cfg.BasePrice))
	})

	t.Run("未配置拍卖拒绝计价", func(t *testing.T) {
		empty := &types.AuctionConfig{}
		empty.Normalize()
		_, err := PriceAt(key, empty, start)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictAuctionNotConfigured, conflict.Reason)
	})

	t.Run("拍卖未开始拒绝计价", func(t *testing.T) {
		_, err := PriceAt(key, cfg, start-1)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictAuctionNotStarted, conflict.Reason)
	})
}

func TestSetAuctionDetails(t *testing.T) {
	ctx := context.Background()
	startPrice := big.NewInt(1_000_000_000_000_000_000)
	basePrice := big.NewInt(100_000_000_000_000_000)

	t.Run("非艺术家被拒绝", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionAdmin,
			uint64(auctionEpoch)+100, 300, startPrice, basePrice)
		assert.True(t, types.IsAuthzError(err))
	})

	t.Run("起拍时间必须在未来", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch), 300, startPrice, basePrice)
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorStartTimeInPast, verr.Reason)
	})

	t.Run("半衰期必须落在许可区间", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 44, startPrice, basePrice)
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorHalfLifeOutOfRange, verr.Reason)

		err = f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 3601, startPrice, basePrice)
		verr, ok = types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorHalfLifeOutOfRange, verr.Reason)
	})

	t.Run("起拍价必须高于底价", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, basePrice, basePrice)
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorStartPriceNotAboveBase, verr.Reason)
	})

	t.Run("底价必须大于零", func(t *testing.T) {
		f := newAuctionFixture(t)

		// 零底价会让曲线衰减成免费铸造
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, startPrice, big.NewInt(0))
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorBasePriceZero, verr.Reason)

		err = f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, startPrice, nil)
		verr, ok = types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorBasePriceZero, verr.Reason)
	})

	t.Run("成功写入", func(t *testing.T) {
		f := newAuctionFixture(t)
		require.NoError(t, f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, startPrice, basePrice))

		cfg, err := f.store.GetAuctionConfig(ctx, f.key)
		require.NoError(t, err)
		assert.True(t, cfg.Configured())
		assert.Equal(t, uint64(auctionEpoch)+100, cfg.TimestampStart)
	})

	t.Run("拍卖开始后配置冻结", func(t *testing.T) {
		f := newAuctionFixture(t)
		require.NoError(t, f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, startPrice, basePrice))

		f.clock.Advance(100 * time.Second)
		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+500, 300, startPrice, basePrice)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictConfigurationLocked, conflict.Reason)
	})

	t.Run("存在未结算购买时起拍价受最近成交价约束", func(t *testing.T) {
		f := newAuctionFixture(t)
		// 上一周期reset后的残留状态：时间价格清零，结算簿记保留
		seeded := configuredAuction(0, 0)
		seeded.LatestPurchasePrice = big.NewInt(400_000_000_000_000_000)
		seeded.NumSettleableInvocations = 2
		require.NoError(t, f.store.PutAuctionConfig(ctx, f.key, seeded))

		err := f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, startPrice, basePrice)
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorStartPriceAboveLatestPurchase, verr.Reason)

		// 不高于最近成交价则放行
		require.NoError(t, f.engine.SetAuctionDetails(ctx, f.key, auctionArtist,
			uint64(auctionEpoch)+100, 300, big.NewInt(400_000_000_000_000_000), basePrice))
	})
}

func TestResetAuctionDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("仅管理员可重置", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.ResetAuctionDetails(ctx, f.key, auctionArtist)
		assert.True(t, types.IsAuthzError(err))
	})

	t.Run("未配置的拍卖拒绝重置", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.ResetAuctionDetails(ctx, f.key, auctionAdmin)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictAuctionNotConfigured, conflict.Reason)
	})

	t.Run("收益已提取后拒绝重置", func(t *testing.T) {
		f := newAuctionFixture(t)
		cfg := configuredAuction(uint64(auctionEpoch), 300)
		cfg.AuctionRevenuesCollected = true
		require.NoError(t, f.store.PutAuctionConfig(ctx, f.key, cfg))

		err := f.engine.ResetAuctionDetails(ctx, f.key, auctionAdmin)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictRevenuesAlreadyCollected, conflict.Reason)
	})

	t.Run("重置清零时间价格字段并保留结算簿记", func(t *testing.T) {
		f := newAuctionFixture(t)
		cfg := configuredAuction(uint64(auctionEpoch), 300)
		cfg.LatestPurchasePrice = big.NewInt(123)
		cfg.NumSettleableInvocations = 7
		require.NoError(t, f.store.PutAuctionConfig(ctx, f.key, cfg))

		require.NoError(t, f.engine.ResetAuctionDetails(ctx, f.key, auctionAdmin))

		after, err := f.store.GetAuctionConfig(ctx, f.key)
		require.NoError(t, err)
		assert.False(t, after.Configured())
		assert.Zero(t, after.TimestampStart)
		assert.Zero(t, after.PriceDecayHalfLifeSeconds)
		assert.Zero(t, after.StartPrice.Sign())
		assert.Zero(t, after.BasePrice.Sign())
		assert.Zero(t, after.LatestPurchasePrice.Cmp(big.NewInt(123)), "结算簿记不受重置影响")
		assert.Equal(t, uint64(7), after.NumSettleableInvocations)
	})
}

func TestHalfLifeRange(t *testing.T) {
	ctx := context.Background()

	t.Run("未显式设置时采用配置文件初始区间", func(t *testing.T) {
		f := newAuctionFixture(t)
		r, err := f.engine.HalfLifeRange(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(45), r.MinSeconds)
		assert.Equal(t, uint64(3600), r.MaxSeconds)
	})

	t.Run("管理员设置后覆盖初始区间", func(t *testing.T) {
		f := newAuctionFixture(t)
		require.NoError(t, f.engine.SetAllowableHalfLifeRange(ctx, auctionAdmin, 60, 600))

		r, err := f.engine.HalfLifeRange(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(60), r.MinSeconds)
		assert.Equal(t, uint64(600), r.MaxSeconds)
	})

	t.Run("非管理员与非法区间被拒绝", func(t *testing.T) {
		f := newAuctionFixture(t)
		assert.True(t, types.IsAuthzError(f.engine.SetAllowableHalfLifeRange(ctx, auctionArtist, 60, 600)))

		err := f.engine.SetAllowableHalfLifeRange(ctx, auctionAdmin, 0, 600)
		_, ok := types.IsValueError(err)
		assert.True(t, ok)

		err = f.engine.SetAllowableHalfLifeRange(ctx, auctionAdmin, 600, 60)
		_, ok = types.IsValueError(err)
		assert.True(t, ok)
	})
}

func TestUpdateProjectCurrencyInfo(t *testing.T) {
	ctx := context.Background()
	dai := common.HexToAddress("0x0000000000000000000000000000000000000035")

	t.Run("原生货币符号必须为ETH", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionArtist, "DAI", common.Address{})
		_, ok := types.IsValueError(err)
		assert.True(t, ok)

		require.NoError(t, f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionArtist, "ETH", common.Address{}))
	})

	t.Run("ERC20货币必须给出非ETH符号", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionArtist, "ETH", dai)
		_, ok := types.IsValueError(err)
		assert.True(t, ok)

		err = f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionArtist, "", dai)
		_, ok = types.IsValueError(err)
		assert.True(t, ok)

		require.NoError(t, f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionArtist, "DAI", dai))
		cfg, err := f.store.GetSplitConfig(ctx, f.key)
		require.NoError(t, err)
		assert.Equal(t, "DAI", cfg.CurrencySymbol)
		assert.Equal(t, dai, cfg.CurrencyAddress)
	})

	t.Run("仅艺术家可更新", func(t *testing.T) {
		f := newAuctionFixture(t)
		err := f.engine.UpdateProjectCurrencyInfo(ctx, f.key, auctionAdmin, "DAI", dai)
		assert.True(t, types.IsAuthzError(err))
	})
}
