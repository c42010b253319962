// Package event 基于asaskevich/EventBus的事件总线实现
package event

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/mintforge/v1/pkg/interfaces/infrastructure/event"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
)

// EventBus 事件总线实现
//
// 铸造事件（拍卖配置、购买、结算、退款）全部经由该总线广播，
// API层与指标收集通过订阅解耦铸造核心逻辑。
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger
}

// New 创建事件总线实例
func New(logger log.Logger) event.Bus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 订阅事件
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 异步订阅事件
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 一次性订阅事件
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 发布事件
//
// 发布是即发即忘的，订阅者的错误不反馈给发布方，
// 铸造核心路径不因订阅者失败而回滚。
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if eb.logger != nil {
		eb.logger.Debugf("发布事件: %s", eventType)
	}
	eb.bus.Publish(string(eventType), args...)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待所有异步回调完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}
