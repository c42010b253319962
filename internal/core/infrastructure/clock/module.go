package clock

import (
	"time"

	"go.uber.org/fx"

	clockConfig "github.com/mintforge/v1/internal/config/clock"
	"github.com/mintforge/v1/pkg/interfaces/config"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
)

// ModuleParams 时钟模块依赖
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger
}

// ModuleOutput 时钟模块输出
type ModuleOutput struct {
	fx.Out

	Clock infraClock.Clock
}

// ProvideServices 根据配置选择时间源并创建时钟服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	options := params.Provider.GetClock()

	switch options.Source {
	case clockConfig.SourceNTP:
		c, err := NewNTPClock(options.NTPServer, 5*time.Minute)
		if err != nil {
			return ModuleOutput{}, err
		}
		params.Logger.Infof("时钟服务已启动: source=ntp server=%s", options.NTPServer)
		return ModuleOutput{Clock: c}, nil
	default:
		params.Logger.Debug("时钟服务已启动: source=system")
		return ModuleOutput{Clock: NewSystemClock()}, nil
	}
}

// Module 返回时钟基础设施模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(ProvideServices),
	)
}
