package http

import (
	"go.uber.org/fx"

	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
)

// Module 返回HTTP API服务模块
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewServer),

		// 强制实例化服务器；fx不实例化无人消费的Provide
		fx.Invoke(func(server *Server, logger log.Logger) {
			logger.Info("HTTP API模块加载完成")
		}),
	)
}
