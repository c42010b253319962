package settlement

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
	"github.com/mintforge/v1/internal/core/minting/payout"
	"github.com/mintforge/v1/internal/core/minting/splitter"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/types"
)

var (
	settleCore      = common.HexToAddress("0x0000000000000000000000000000000000000061")
	settleArtist    = common.HexToAddress("0x0000000000000000000000000000000000000062")
	settleAdmin     = common.HexToAddress("0x0000000000000000000000000000000000000063")
	settleSelf      = common.HexToAddress("0x0000000000000000000000000000000000000064")
	settleBuyer     = common.HexToAddress("0x0000000000000000000000000000000000000065")
	settleRecipient = common.HexToAddress("0x0000000000000000000000000000000000000066")
)

const settleEpoch = int64(1_700_000_000)

type settleFixture struct {
	service    *Service
	store      *state.Store
	clock      *clock.MockClock
	registry   *collab.LocalRegistry
	dispatcher *collab.LocalDispatcher
	ledger     *collab.LedgerTransferrer
	key        types.ProjectKey
}

// newSettleFixture 组装结算服务及其全部进程内协作方
// maxInvocations为项目的权威铸造上限
func newSettleFixture(t *testing.T, maxInvocations uint64) *settleFixture {
	t.Helper()
	kv, err := memorystore.New(memoryconfig.New(nil), infralog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	cacheKV, err := memorystore.New(memoryconfig.New(nil), infralog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cacheKV.Close() })

	store := state.New(kv, infralog.NewNop())
	mockClock := clock.NewMockClock(time.Unix(settleEpoch, 0))

	reg := collab.NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(settleCore, false))
	key := types.NewProjectKey(settleCore, 2)
	require.NoError(t, reg.RegisterProject(key, collab.ProjectParams{
		Artist:         settleArtist,
		MaxInvocations: maxInvocations,
	}))

	options := &minterconfig.MinterOptions{
		MinHalfLifeSeconds: 45,
		MaxHalfLifeSeconds: 3600,
		TransferGasStipend: 2300,
		MinterAddress:      settleSelf.Hex(),
	}
	oracle := collab.NewAllowlistACL([]common.Address{settleAdmin})
	ledger := collab.NewLedgerTransferrer()
	resolver := collab.NewMapResolver()
	fundsSplitter := splitter.New(reg, resolver, ledger, cacheKV, options, infralog.NewNop())
	payoutEngine := payout.New(store, ledger, options, infralog.NewNop())

	return &settleFixture{
		service:    New(store, mockClock, reg, oracle, fundsSplitter, payoutEngine, options, infralog.NewNop()),
		store:      store,
		clock:      mockClock,
		registry:   reg,
		dispatcher: collab.NewLocalDispatcher(reg, mockClock, settleSelf, infralog.NewNop()),
		ledger:     ledger,
		key:        key,
	}
}

// seedAuction 写入进行中的拍卖与购买后的结算簿记
//
// 模拟numPurchases次成交：每次netPosted按成交瞬间价格记账，
// 托管账与最近成交价同步更新。
func (f *settleFixture) seedAuction(t *testing.T, latestPrice, netPosted int64, numPurchases uint64) {
	t.Helper()
	ctx := context.Background()

	cfg := &types.AuctionConfig{
		TimestampStart:            uint64(settleEpoch),
		PriceDecayHalfLifeSeconds: 300,
		StartPrice:                big.NewInt(1000),
		BasePrice:                 big.NewInt(100),
		LatestPurchasePrice:       big.NewInt(latestPrice),
		NumSettleableInvocations:  numPurchases,
	}
	require.NoError(t, f.store.PutAuctionConfig(ctx, f.key, cfg))

	batch := f.store.NewBatch().
		PutReceipt(f.key, settleBuyer, &types.SettlementReceipt{
			NetPosted:    big.NewInt(netPosted),
			NumPurchases: numPurchases,
		}).
		PutCustody(f.key, big.NewInt(netPosted))
	require.NoError(t, f.store.Commit(ctx, batch))
}

// mintOut 通过分发器把项目铸满
func (f *settleFixture) mintOut(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := f.dispatcher.Mint(context.Background(), settleBuyer, f.key, settleSelf)
		require.NoError(t, err)
	}
}

func TestWithdrawArtistAndAdminRevenues(t *testing.T) {
	ctx := context.Background()

	t.Run("非艺术家非管理员被拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleBuyer)
		assert.True(t, types.IsAuthzError(err))
	})

	t.Run("售罄后按最近成交价清算", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		// 两次成交：第一次800，第二次500，净入账1300
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)

		revenue, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)
		assert.Zero(t, revenue.Cmp(big.NewInt(1000)), "收益 = 最终价500 × 2次")

		// flagship无平台项，全额归艺术家
		assert.Zero(t, f.ledger.BalanceOf(settleArtist).Cmp(big.NewInt(1000)))

		cfg, err := f.store.GetAuctionConfig(ctx, f.key)
		require.NoError(t, err)
		assert.True(t, cfg.AuctionRevenuesCollected)
		assert.Zero(t, cfg.LatestPurchasePrice.Cmp(big.NewInt(500)), "最终清算价被钉死")

		custody, err := f.store.GetCustody(ctx, f.key)
		require.NoError(t, err)
		assert.Zero(t, custody.Cmp(big.NewInt(300)), "托管余额 = 1300 - 1000，留给买家取回")
	})

	t.Run("未售罄且价格未衰减到底价时拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.mintOut(t, 1)

		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictAuctionNotYetSoldOut, conflict.Reason)
	})

	t.Run("价格衰减到底价后按底价清算", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.mintOut(t, 1)

		// 十个半衰期后曲线价必然钳到底价100
		f.clock.Advance(3000 * time.Second)

		revenue, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)
		assert.Zero(t, revenue.Cmp(big.NewInt(100)))

		cfg, err := f.store.GetAuctionConfig(ctx, f.key)
		require.NoError(t, err)
		assert.Zero(t, cfg.LatestPurchasePrice.Cmp(big.NewInt(100)))
	})

	t.Run("二次提取被拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)

		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)

		_, err = f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleAdmin)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictRevenuesAlreadyCollected, conflict.Reason)
	})

	t.Run("管理员同样可发起提取", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)

		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleAdmin)
		require.NoError(t, err)
	})
}

func TestReclaimProjectExcessSettlementFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("周期进行中按当前曲线价核销", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		// 成交价800入账，当前时刻恰好一个半衰期：曲线价500
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		owed, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(300)), "应退 = 800 - 500×1")
		assert.Zero(t, f.ledger.BalanceOf(settleBuyer).Cmp(big.NewInt(300)))

		receipt, err := f.store.GetReceipt(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, receipt.NetPosted.Cmp(big.NewInt(500)), "核销到当前价×次数")
		assert.Equal(t, uint64(1), receipt.NumPurchases)

		custody, err := f.store.GetCustody(ctx, f.key)
		require.NoError(t, err)
		assert.Zero(t, custody.Cmp(big.NewInt(500)))
	})

	t.Run("二次取回得到零金额而非错误", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		_, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)

		owed, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Sign())
	})

	t.Run("无购买记录被拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)

		_, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleRecipient)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictNoPriorPurchases, conflict.Reason)
	})

	t.Run("收益提取后按钉死的清算价核销", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)

		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)

		// 时钟继续前进也不再影响清算价
		f.clock.Advance(3000 * time.Second)
		owed, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(300)), "应退 = 1300 - 500×2")
	})

	t.Run("拍卖reset后按最近成交价核销", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 600, 800, 1)

		// 模拟reset：时间价格字段清零，结算簿记保留
		cfg, err := f.store.GetAuctionConfig(ctx, f.key)
		require.NoError(t, err)
		cfg.TimestampStart = 0
		cfg.PriceDecayHalfLifeSeconds = 0
		cfg.StartPrice = new(big.Int)
		cfg.BasePrice = new(big.Int)
		require.NoError(t, f.store.PutAuctionConfig(ctx, f.key, cfg))

		owed, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(200)), "应退 = 800 - 600×1")
	})

	t.Run("指定接收地址时退款入账到接收方", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		owed, err := f.service.ReclaimProjectExcessSettlementFundsTo(ctx, settleRecipient, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(300)))
		assert.Zero(t, f.ledger.BalanceOf(settleRecipient).Cmp(big.NewInt(300)))
		assert.Zero(t, f.ledger.BalanceOf(settleBuyer).Sign())
	})

	t.Run("零地址接收方被拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		_, err := f.service.ReclaimProjectExcessSettlementFundsTo(ctx, common.Address{}, f.key, settleBuyer)
		assert.True(t, types.IsZeroAddressError(err))
	})
}

func TestReclaimProjectsExcessSettlementFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("多项目合并为一次退款", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)

		key2 := types.NewProjectKey(settleCore, 3)
		require.NoError(t, f.registry.RegisterProject(key2, collab.ProjectParams{
			Artist:         settleArtist,
			MaxInvocations: 10,
		}))
		cfg2 := &types.AuctionConfig{
			TimestampStart:            uint64(settleEpoch),
			PriceDecayHalfLifeSeconds: 300,
			StartPrice:                big.NewInt(2000),
			BasePrice:                 big.NewInt(200),
			LatestPurchasePrice:       big.NewInt(1500),
			NumSettleableInvocations:  1,
		}
		require.NoError(t, f.store.PutAuctionConfig(ctx, key2, cfg2))
		require.NoError(t, f.store.Commit(ctx, f.store.NewBatch().
			PutReceipt(key2, settleBuyer, &types.SettlementReceipt{NetPosted: big.NewInt(1500), NumPurchases: 1}).
			PutCustody(key2, big.NewInt(1500))))

		// 一个半衰期后：项目2→500，项目3→1000
		f.clock.Advance(300 * time.Second)

		total, err := f.service.ReclaimProjectsExcessSettlementFunds(ctx, []types.ProjectKey{f.key, key2}, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, total.Cmp(big.NewInt(800)), "合计 = (800-500) + (1500-1000)")
		assert.Zero(t, f.ledger.BalanceOf(settleBuyer).Cmp(big.NewInt(800)))
	})

	t.Run("重复项目被整体拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		// 每次暂存都基于落盘前的余额计算应退金额：同一项目重复
		// 出现会把单份300的退款累计成多份，而托管只出账一次
		_, err := f.service.ReclaimProjectsExcessSettlementFunds(ctx,
			[]types.ProjectKey{f.key, f.key, f.key}, settleBuyer)
		valueErr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorDuplicateProjectKey, valueErr.Reason)

		// 分文不动
		receipt, receiptErr := f.store.GetReceipt(ctx, f.key, settleBuyer)
		require.NoError(t, receiptErr)
		assert.Zero(t, receipt.NetPosted.Cmp(big.NewInt(800)))
		custody, custodyErr := f.store.GetCustody(ctx, f.key)
		require.NoError(t, custodyErr)
		assert.Zero(t, custody.Cmp(big.NewInt(800)))
		assert.Zero(t, f.ledger.BalanceOf(settleBuyer).Sign())
	})

	t.Run("任一项目无购买记录则整体失败", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		unknown := types.NewProjectKey(settleCore, 9)
		_, err := f.service.ReclaimProjectsExcessSettlementFunds(ctx, []types.ProjectKey{f.key, unknown}, settleBuyer)
		require.Error(t, err)

		// 分文不动
		receipt, receiptErr := f.store.GetReceipt(ctx, f.key, settleBuyer)
		require.NoError(t, receiptErr)
		assert.Zero(t, receipt.NetPosted.Cmp(big.NewInt(800)))
		assert.Zero(t, f.ledger.BalanceOf(settleBuyer).Sign())
	})
}

func TestAdminEmergencyReduceSelloutPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("仅管理员可下调", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		err := f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleArtist, big.NewInt(400))
		assert.True(t, types.IsAuthzError(err))
	})

	t.Run("收益已提取后拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)
		_, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)

		err = f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleAdmin, big.NewInt(400))
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictRevenuesAlreadyCollected, conflict.Reason)
	})

	t.Run("本周期尚无成交时拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 0, 0, 0)

		err := f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleAdmin, big.NewInt(400))
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorNoPurchasesToAdjust, verr.Reason)
	})

	t.Run("清算价只允许下调且不得低于底价", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 500, 500, 1)

		err := f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleAdmin, big.NewInt(600))
		verr, ok := types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorPriceAboveLatestPurchase, verr.Reason)

		err = f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleAdmin, big.NewInt(50))
		verr, ok = types.IsValueError(err)
		require.True(t, ok)
		assert.Equal(t, types.ValueErrorPriceBelowBase, verr.Reason)
	})

	t.Run("成功下调后取回按新清算价计算", func(t *testing.T) {
		f := newSettleFixture(t, 2)
		f.seedAuction(t, 500, 1300, 2)
		f.mintOut(t, 2)

		require.NoError(t, f.service.AdminEmergencyReduceSelloutPrice(ctx, f.key, settleAdmin, big.NewInt(300)))

		revenue, err := f.service.WithdrawArtistAndAdminRevenues(ctx, f.key, settleArtist)
		require.NoError(t, err)
		assert.Zero(t, revenue.Cmp(big.NewInt(600)), "收益 = 下调后的300 × 2")

		owed, err := f.service.ReclaimProjectExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(700)), "应退 = 1300 - 300×2")
	})
}

func TestExcessSettlementFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("查询不改动状态", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		f.clock.Advance(300 * time.Second)

		owed, err := f.service.ExcessSettlementFunds(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, owed.Cmp(big.NewInt(300)))

		receipt, err := f.store.GetReceipt(ctx, f.key, settleBuyer)
		require.NoError(t, err)
		assert.Zero(t, receipt.NetPosted.Cmp(big.NewInt(800)), "查询不核销")
	})

	t.Run("无购买记录被拒绝", func(t *testing.T) {
		f := newSettleFixture(t, 10)
		f.seedAuction(t, 800, 800, 1)
		_, err := f.service.ExcessSettlementFunds(ctx, f.key, settleRecipient)
		conflict, ok := types.IsStateConflictError(err)
		require.True(t, ok)
		assert.Equal(t, types.StateConflictNoPriorPurchases, conflict.Reason)
	})
}
