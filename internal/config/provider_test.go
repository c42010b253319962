package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintforge/v1/pkg/types"
)

// TestGetMinter 测试 GetMinter() 方法
func TestGetMinter(t *testing.T) {
	t.Run("未配置时使用默认半衰期区间", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		options := provider.GetMinter()
		assert.Equal(t, uint64(45), options.MinHalfLifeSeconds)
		assert.Equal(t, uint64(3600), options.MaxHalfLifeSeconds)
		assert.Equal(t, uint64(2300), options.TransferGasStipend)
	})

	t.Run("显式配置覆盖默认值", func(t *testing.T) {
		cfg := &types.AppConfig{
			Minter: &types.UserMinterConfig{
				MinHalfLifeSeconds: types.UInt64Ptr(60),
				MaxHalfLifeSeconds: types.UInt64Ptr(600),
				MinterAddress:      types.StringPtr("0x0000000000000000000000000000000000000084"),
				AdminAddresses:     []string{"0x0000000000000000000000000000000000000085"},
			},
		}
		provider := NewProvider(cfg)
		options := provider.GetMinter()
		assert.Equal(t, uint64(60), options.MinHalfLifeSeconds)
		assert.Equal(t, uint64(600), options.MaxHalfLifeSeconds)
		assert.Equal(t, "0x0000000000000000000000000000000000000084", options.MinterAddress)
		assert.Len(t, options.GetAdminAddresses(), 1)
	})

	t.Run("非法管理员地址被静默丢弃", func(t *testing.T) {
		cfg := &types.AppConfig{
			Minter: &types.UserMinterConfig{
				AdminAddresses: []string{"not-an-address", "0x0000000000000000000000000000000000000085"},
			},
		}
		provider := NewProvider(cfg)
		assert.Len(t, provider.GetMinter().GetAdminAddresses(), 1)
	})
}

// TestGetAPI 测试 GetAPI() 方法
func TestGetAPI(t *testing.T) {
	t.Run("未配置时默认启用并监听8545", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		options := provider.GetAPI()
		assert.True(t, options.Enabled)
		assert.Equal(t, "0.0.0.0", options.Host)
		assert.Equal(t, 8545, options.Port)
	})

	t.Run("显式禁用", func(t *testing.T) {
		cfg := &types.AppConfig{
			API: &types.UserAPIConfig{
				Enabled: types.BoolPtr(false),
				Port:    types.IntPtr(9000),
			},
		}
		provider := NewProvider(cfg)
		options := provider.GetAPI()
		assert.False(t, options.Enabled)
		assert.Equal(t, 9000, options.Port)
	})
}

// TestNilAppConfig 空配置不触发空指针
func TestNilAppConfig(t *testing.T) {
	provider := NewProvider(nil)
	assert.NotNil(t, provider.GetLog())
	assert.NotNil(t, provider.GetAPI())
	assert.NotNil(t, provider.GetMinter())
	assert.NotNil(t, provider.GetClock())
	assert.NotNil(t, provider.GetBadger())
	assert.NotNil(t, provider.GetMemory())
}
