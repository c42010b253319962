package invocations

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
	"github.com/mintforge/v1/internal/core/collab"
	infralog "github.com/mintforge/v1/internal/core/infrastructure/log"
	memorystore "github.com/mintforge/v1/internal/core/infrastructure/storage/memory"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/types"
)

var (
	trackerCore   = common.HexToAddress("0x0000000000000000000000000000000000000011")
	trackerArtist = common.HexToAddress("0x0000000000000000000000000000000000000012")
	trackerOther  = common.HexToAddress("0x0000000000000000000000000000000000000013")
)

// newTrackerFixture 组装跟踪器、状态存储与本地注册表
func newTrackerFixture(t *testing.T, maxInvocations uint64) (*Tracker, *state.Store, *collab.LocalRegistry, types.ProjectKey) {
	t.Helper()
	kv, err := memorystore.New(memoryconfig.New(nil), infralog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	store := state.New(kv, infralog.NewNop())
	reg := collab.NewLocalRegistry(infralog.NewNop())
	key := types.NewProjectKey(trackerCore, 3)

	require.NoError(t, reg.SetCoreForm(trackerCore, false))
	require.NoError(t, reg.RegisterProject(key, collab.ProjectParams{
		Artist:         trackerArtist,
		MaxInvocations: maxInvocations,
	}))

	return New(store, reg, infralog.NewNop()), store, reg, key
}

func TestSyncFromAuthoritative(t *testing.T) {
	tracker, store, _, key := newTrackerFixture(t, 10)
	ctx := context.Background()

	cfg, err := tracker.SyncFromAuthoritative(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cfg.MaxInvocations)
	assert.False(t, cfg.MaxHasBeenInvoked)

	// 同步结果落入本地缓存
	cached, err := store.GetMaxInvocations(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), cached.MaxInvocations)
}

func TestSyncFromAuthoritative_UnknownProject(t *testing.T) {
	tracker, _, _, _ := newTrackerFixture(t, 10)

	_, err := tracker.SyncFromAuthoritative(context.Background(), types.NewProjectKey(trackerCore, 999))
	require.Error(t, err)
	_, ok := types.IsExternalCallError(err)
	assert.True(t, ok, "未注册项目应包装为外部调用错误")
}

func TestGate(t *testing.T) {
	t.Run("缓存缺失时先做权威同步", func(t *testing.T) {
		tracker, store, _, key := newTrackerFixture(t, 5)
		ctx := context.Background()

		cached, err := store.HasMaxInvocations(ctx, key)
		require.NoError(t, err)
		require.False(t, cached)

		cfg, err := tracker.Gate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), cfg.MaxInvocations)

		cached, err = store.HasMaxInvocations(ctx, key)
		require.NoError(t, err)
		assert.True(t, cached)
	})

	t.Run("已达上限时拒绝", func(t *testing.T) {
		tracker, store, _, key := newTrackerFixture(t, 5)
		ctx := context.Background()

		require.NoError(t, store.PutMaxInvocations(ctx, key, &types.MaxInvocationsProjectConfig{
			MaxInvocations:    5,
			MaxHasBeenInvoked: true,
		}))

		_, err := tracker.Gate(ctx, key)
		require.Error(t, err)
		var conflict *types.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, types.StateConflictMaximumInvocationsReached, conflict.Reason)
	})
}

func TestManuallyLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("仅艺术家可收紧", func(t *testing.T) {
		tracker, _, _, key := newTrackerFixture(t, 10)
		err := tracker.ManuallyLimit(ctx, key, trackerOther, 5)
		require.Error(t, err)
		assert.True(t, types.IsAuthzError(err))
	})

	t.Run("不得超过权威上限", func(t *testing.T) {
		tracker, _, _, key := newTrackerFixture(t, 10)
		err := tracker.ManuallyLimit(ctx, key, trackerArtist, 11)
		require.Error(t, err)
		var verr *types.ValueError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, types.ValueErrorMaxInvocationsExceedsRegistry, verr.Reason)
	})

	t.Run("收紧到零立即置位短路标志", func(t *testing.T) {
		tracker, store, _, key := newTrackerFixture(t, 10)
		require.NoError(t, tracker.ManuallyLimit(ctx, key, trackerArtist, 0))

		cfg, err := store.GetMaxInvocations(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, cfg.MaxInvocations)
		assert.True(t, cfg.MaxHasBeenInvoked)
	})

	t.Run("正常收紧", func(t *testing.T) {
		tracker, store, _, key := newTrackerFixture(t, 10)
		require.NoError(t, tracker.ManuallyLimit(ctx, key, trackerArtist, 4))

		cfg, err := store.GetMaxInvocations(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), cfg.MaxInvocations)
		assert.False(t, cfg.MaxHasBeenInvoked)
	})
}

func TestMarkMinted(t *testing.T) {
	tracker, _, _, key := newTrackerFixture(t, 2)
	base := key.ProjectID * types.OneMillion

	cfg := &types.MaxInvocationsProjectConfig{MaxInvocations: 2}

	// 序号0不是最后一次铸造
	assert.False(t, tracker.MarkMinted(cfg, base+0))
	assert.False(t, cfg.MaxHasBeenInvoked)

	// 序号1（上限-1）翻转短路标志
	assert.True(t, tracker.MarkMinted(cfg, base+1))
	assert.True(t, cfg.MaxHasBeenInvoked)

	// 已置位后幂等
	assert.False(t, tracker.MarkMinted(cfg, base+1))
}
