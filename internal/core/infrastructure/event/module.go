package event

import (
	"go.uber.org/fx"

	eventInterface "github.com/mintforge/v1/pkg/interfaces/infrastructure/event"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
)

// ModuleParams 事件总线模块依赖
type ModuleParams struct {
	fx.In

	Logger log.Logger
}

// ModuleOutput 事件总线模块输出
type ModuleOutput struct {
	fx.Out

	Bus eventInterface.Bus
}

// ProvideServices 创建事件总线服务
func ProvideServices(params ModuleParams) ModuleOutput {
	return ModuleOutput{Bus: New(params.Logger)}
}

// Module 返回事件总线基础设施模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}
