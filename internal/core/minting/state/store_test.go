package state

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
	infralog "github.com/mintforge/v1/internal/core/infrastructure/log"
	memorystore "github.com/mintforge/v1/internal/core/infrastructure/storage/memory"
	"github.com/mintforge/v1/pkg/types"
)

// newTestStore 基于内存KV创建状态存储
func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := memorystore.New(memoryconfig.New(nil), infralog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return New(kv, infralog.NewNop())
}

func testKey() types.ProjectKey {
	return types.NewProjectKey(common.HexToAddress("0x00000000000000000000000000000000000000aa"), 7)
}

func TestAuctionConfig_MissingReturnsNormalizedZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg, err := store.GetAuctionConfig(ctx, testKey())
	require.NoError(t, err)

	assert.False(t, cfg.Configured())
	assert.NotNil(t, cfg.StartPrice)
	assert.NotNil(t, cfg.BasePrice)
	assert.NotNil(t, cfg.LatestPurchasePrice)
	assert.Zero(t, cfg.NumSettleableInvocations)
}

func TestAuctionConfig_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := testKey()

	written := &types.AuctionConfig{
		TimestampStart:            1_700_000_000,
		PriceDecayHalfLifeSeconds: 300,
		StartPrice:                big.NewInt(1_000_000_000_000_000_000),
		BasePrice:                 big.NewInt(100_000_000_000_000_000),
		LatestPurchasePrice:       big.NewInt(0),
		NumSettleableInvocations:  3,
	}
	require.NoError(t, store.PutAuctionConfig(ctx, key, written))

	read, err := store.GetAuctionConfig(ctx, key)
	require.NoError(t, err)
	assert.True(t, read.Configured())
	assert.Equal(t, written.TimestampStart, read.TimestampStart)
	assert.Equal(t, written.PriceDecayHalfLifeSeconds, read.PriceDecayHalfLifeSeconds)
	assert.Zero(t, written.StartPrice.Cmp(read.StartPrice))
	assert.Zero(t, written.BasePrice.Cmp(read.BasePrice))
	assert.Equal(t, uint64(3), read.NumSettleableInvocations)
}

func TestReceipt_MissingReturnsZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	purchaser := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	receipt, err := store.GetReceipt(ctx, testKey(), purchaser)
	require.NoError(t, err)
	assert.Zero(t, receipt.NumPurchases)
	require.NotNil(t, receipt.NetPosted)
	assert.Zero(t, receipt.NetPosted.Sign())
}

func TestHalfLifeRange_UnsetReturnsNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r, err := store.GetHalfLifeRange(ctx)
	require.NoError(t, err)
	assert.Nil(t, r)

	require.NoError(t, store.PutHalfLifeRange(ctx, types.HalfLifeRange{MinSeconds: 60, MaxSeconds: 600}))

	r, err = store.GetHalfLifeRange(ctx)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(60), r.MinSeconds)
	assert.Equal(t, uint64(600), r.MaxSeconds)
}

func TestBatch_CommitAppliesAllEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := testKey()
	purchaser := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	batch := store.NewBatch().
		PutAuctionConfig(key, &types.AuctionConfig{
			TimestampStart:            100,
			PriceDecayHalfLifeSeconds: 60,
			StartPrice:                big.NewInt(1000),
			BasePrice:                 big.NewInt(100),
			LatestPurchasePrice:       big.NewInt(800),
			NumSettleableInvocations:  1,
		}).
		PutReceipt(key, purchaser, &types.SettlementReceipt{
			NetPosted:    big.NewInt(900),
			NumPurchases: 1,
		}).
		PutCustody(key, big.NewInt(900))

	require.NoError(t, store.Commit(ctx, batch))

	cfg, err := store.GetAuctionConfig(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.NumSettleableInvocations)

	receipt, err := store.GetReceipt(ctx, key, purchaser)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.NumPurchases)
	assert.Zero(t, receipt.NetPosted.Cmp(big.NewInt(900)))

	custody, err := store.GetCustody(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, custody.Cmp(big.NewInt(900)))
}

func TestBatch_NegativeAmountPoisonsBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := testKey()

	batch := store.NewBatch().
		PutCustody(key, big.NewInt(-1)).
		PutCustody(key, big.NewInt(50))

	err := store.Commit(ctx, batch)
	require.Error(t, err)

	// 污染的变更集整体不落盘
	custody, err := store.GetCustody(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, custody.Sign())
}

func TestBatch_EmptyCommitIsNoop(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Commit(context.Background(), store.NewBatch()))
}

func TestPendingCredit_DeleteClearsBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	to := common.HexToAddress("0x00000000000000000000000000000000000000dd")

	require.NoError(t, store.Commit(ctx, store.NewBatch().PutPendingCredit(to, big.NewInt(777))))

	credit, err := store.GetPendingCredit(ctx, to)
	require.NoError(t, err)
	assert.Zero(t, credit.Cmp(big.NewInt(777)))

	require.NoError(t, store.Commit(ctx, store.NewBatch().DeletePendingCredit(to)))

	credit, err = store.GetPendingCredit(ctx, to)
	require.NoError(t, err)
	assert.Zero(t, credit.Sign())
}
