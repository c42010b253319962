package collab

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintforge/v1/internal/core/infrastructure/clock"
	infralog "github.com/mintforge/v1/internal/core/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

var (
	engineCore   = common.HexToAddress("0x0000000000000000000000000000000000000021")
	flagshipCore = common.HexToAddress("0x0000000000000000000000000000000000000022")
	artistAddr   = common.HexToAddress("0x0000000000000000000000000000000000000023")
	providerAddr = common.HexToAddress("0x0000000000000000000000000000000000000024")
	platformAddr = common.HexToAddress("0x0000000000000000000000000000000000000025")
	payeeAddr    = common.HexToAddress("0x0000000000000000000000000000000000000026")
	minterAddr   = common.HexToAddress("0x0000000000000000000000000000000000000027")
)

func newEngineRegistry(t *testing.T) (*LocalRegistry, types.ProjectKey) {
	t.Helper()
	reg := NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(engineCore, true))

	key := types.NewProjectKey(engineCore, 12)
	require.NoError(t, reg.RegisterProject(key, ProjectParams{
		Artist:             artistAddr,
		MaxInvocations:     100,
		ProviderAddress:    providerAddr,
		ProviderBPS:        250,
		PlatformAddress:    platformAddr,
		PlatformBPS:        250,
		AdditionalPayee:    payeeAddr,
		AdditionalPayeeBPS: 1000,
	}))
	return reg, key
}

func TestSetCoreForm_Immutable(t *testing.T) {
	reg := NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(engineCore, true))
	require.NoError(t, reg.SetCoreForm(engineCore, true))
	assert.Error(t, reg.SetCoreForm(engineCore, false), "形态声明后不可变更")
}

func TestRegisterProject_FlagshipRejectsPlatformSplit(t *testing.T) {
	reg := NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(flagshipCore, false))

	err := reg.RegisterProject(types.NewProjectKey(flagshipCore, 1), ProjectParams{
		Artist:         artistAddr,
		MaxInvocations: 10,
		PlatformBPS:    100,
	})
	assert.Error(t, err)
}

func TestGetPrimaryRevenueSplits_SumEqualsAmount(t *testing.T) {
	reg, key := newEngineRegistry(t)
	ctx := context.Background()

	// 用带余数的金额验证余数归艺术家
	amount := big.NewInt(1_000_003)
	splits, err := reg.GetPrimaryRevenueSplits(ctx, key, amount)
	require.NoError(t, err)

	assert.Zero(t, splits.ProviderAmount.Cmp(big.NewInt(25_000)))
	assert.Zero(t, splits.PlatformAmount.Cmp(big.NewInt(25_000)))
	assert.Zero(t, splits.AdditionalPayeeAmount.Cmp(big.NewInt(100_000)))
	assert.Zero(t, splits.Total().Cmp(amount), "各拆分项之和必须精确等于总额")
	assert.Equal(t, artistAddr, splits.ArtistAddress)
}

func TestRevenueSplitArity(t *testing.T) {
	reg, _ := newEngineRegistry(t)
	require.NoError(t, reg.SetCoreForm(flagshipCore, false))
	ctx := context.Background()

	arity, err := reg.RevenueSplitArity(ctx, engineCore)
	require.NoError(t, err)
	assert.Equal(t, registry.SplitArityEngine, arity)

	arity, err = reg.RevenueSplitArity(ctx, flagshipCore)
	require.NoError(t, err)
	assert.Equal(t, registry.SplitArityFlagship, arity)
}

func TestReduceMaxInvocations(t *testing.T) {
	reg, key := newEngineRegistry(t)

	assert.Error(t, reg.ReduceMaxInvocations(key, 200), "权威上限只降不升")
	require.NoError(t, reg.ReduceMaxInvocations(key, 50))

	data, err := reg.ProjectStateData(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), data.MaxInvocations)
}

func TestDispatcherMint_TokenIDEncoding(t *testing.T) {
	reg, key := newEngineRegistry(t)
	mockClock := clock.NewMockClock(time.Unix(1_700_000_000, 0))
	dispatcher := NewLocalDispatcher(reg, mockClock, minterAddr, infralog.NewNop())
	ctx := context.Background()
	to := common.HexToAddress("0x0000000000000000000000000000000000000028")

	tokenID, err := dispatcher.Mint(ctx, to, key, minterAddr)
	require.NoError(t, err)
	assert.Equal(t, key.ProjectID*types.OneMillion, tokenID)

	tokenID, err = dispatcher.Mint(ctx, to, key, minterAddr)
	require.NoError(t, err)
	assert.Equal(t, key.ProjectID*types.OneMillion+1, tokenID)

	data, err := reg.ProjectStateData(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), data.Invocations)
}

func TestDispatcherMint_Validation(t *testing.T) {
	reg, key := newEngineRegistry(t)
	mockClock := clock.NewMockClock(time.Unix(1_700_000_000, 0))
	dispatcher := NewLocalDispatcher(reg, mockClock, minterAddr, infralog.NewNop())
	ctx := context.Background()

	t.Run("零地址接收方", func(t *testing.T) {
		_, err := dispatcher.Mint(ctx, common.Address{}, key, minterAddr)
		require.Error(t, err)
		assert.True(t, types.IsZeroAddressError(err))
	})

	t.Run("绑定了其他铸造器的项目拒绝铸造", func(t *testing.T) {
		other := common.HexToAddress("0x0000000000000000000000000000000000000029")
		dispatcher.ApproveMinter(key, other)
		_, err := dispatcher.Mint(ctx, artistAddr, key, minterAddr)
		assert.Error(t, err)
	})
}

func TestDispatcherMint_RecordsCompletion(t *testing.T) {
	reg := NewLocalRegistry(infralog.NewNop())
	require.NoError(t, reg.SetCoreForm(engineCore, true))
	key := types.NewProjectKey(engineCore, 5)
	require.NoError(t, reg.RegisterProject(key, ProjectParams{
		Artist:         artistAddr,
		MaxInvocations: 1,
	}))

	mockClock := clock.NewMockClock(time.Unix(1_700_000_123, 0))
	dispatcher := NewLocalDispatcher(reg, mockClock, minterAddr, infralog.NewNop())
	ctx := context.Background()

	_, err := dispatcher.Mint(ctx, artistAddr, key, minterAddr)
	require.NoError(t, err)

	data, err := reg.ProjectStateData(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_123), data.CompletedAt, "售罄时刻取自时钟")

	_, err = dispatcher.Mint(ctx, artistAddr, key, minterAddr)
	assert.Error(t, err, "超出权威上限的铸造被拒绝")
}

func TestLedgerTransferrer(t *testing.T) {
	ledger := NewLedgerTransferrer()
	ctx := context.Background()
	to := common.HexToAddress("0x000000000000000000000000000000000000002a")

	t.Run("转账累加余额", func(t *testing.T) {
		require.NoError(t, ledger.Transfer(ctx, to, big.NewInt(500), 0))
		require.NoError(t, ledger.Transfer(ctx, to, big.NewInt(250), 0))
		assert.Zero(t, ledger.BalanceOf(to).Cmp(big.NewInt(750)))
	})

	t.Run("拒收地址转账失败", func(t *testing.T) {
		ledger.SetRefusing(to, true)
		assert.Error(t, ledger.Transfer(ctx, to, big.NewInt(1), 0))
		ledger.SetRefusing(to, false)
	})

	t.Run("零金额转账为空操作", func(t *testing.T) {
		before := ledger.BalanceOf(to)
		require.NoError(t, ledger.Transfer(ctx, to, big.NewInt(0), 0))
		assert.Zero(t, ledger.BalanceOf(to).Cmp(before))
	})
}

func TestMemoryERC20(t *testing.T) {
	token := NewMemoryERC20("DAI")
	ctx := context.Background()
	from := common.HexToAddress("0x000000000000000000000000000000000000002b")
	to := common.HexToAddress("0x000000000000000000000000000000000000002c")

	token.Mint(from, big.NewInt(1000))
	token.Approve(from, to, big.NewInt(600))

	t.Run("余额不足返回false而非错误", func(t *testing.T) {
		ok, err := token.TransferFrom(ctx, from, to, big.NewInt(2000))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("成功转账调整双方余额", func(t *testing.T) {
		ok, err := token.TransferFrom(ctx, from, to, big.NewInt(400))
		require.NoError(t, err)
		assert.True(t, ok)

		fromBalance, err := token.BalanceOf(ctx, from)
		require.NoError(t, err)
		assert.Zero(t, fromBalance.Cmp(big.NewInt(600)))

		toBalance, err := token.BalanceOf(ctx, to)
		require.NoError(t, err)
		assert.Zero(t, toBalance.Cmp(big.NewInt(400)))
	})
}

func TestAllowlistACL(t *testing.T) {
	admin := common.HexToAddress("0x000000000000000000000000000000000000002d")
	stranger := common.HexToAddress("0x000000000000000000000000000000000000002e")
	acl := NewAllowlistACL([]common.Address{admin})
	ctx := context.Background()

	assert.True(t, acl.AllowedCall(ctx, admin, engineCore, "withdraw"))
	assert.False(t, acl.AllowedCall(ctx, stranger, engineCore, "withdraw"))

	acl.Grant(stranger)
	assert.True(t, acl.AllowedCall(ctx, stranger, engineCore, "withdraw"))
}
