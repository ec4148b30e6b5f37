package checkout

import (
	"context"
	"time"

	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

// CommandBus 把对账决定转化为持久副作用的边界
// 实现方必须保证每个命令可以安全重放（至少一次投递）
type CommandBus interface {
	Handle(ctx context.Context, command interface{}) error
}

// SavePayPalOrderCommand 持久化最新的远端订单快照和状态标签
type SavePayPalOrderCommand struct {
	OrderID string
	Status  string
	Order   *types.OrderPayload
}

// CapturePayPalOrderCommand 向支付渠道发起捕获请求
type CapturePayPalOrderCommand struct {
	OrderID       string
	FundingSource string
}

// CreateOrderCommand 创建本地订单
// cart_id唯一约束兜底并发下的重复创建
type CreateOrderCommand struct {
	CartID        uint
	PaymentModule string
	StateID       uint
	PaymentMethod string
	TransactionID string
	PaidAmount    string
}

// AddOrderPaymentCommand 为订单追加支付流水
type AddOrderPaymentCommand struct {
	OrderID       uint
	PaidAt        time.Time
	PaymentMethod string
	Amount        string
	Currency      string
	TransactionID *string
}

// UpdateOrderStatusCommand 变更订单状态并记入状态历史
type UpdateOrderStatusCommand struct {
	OrderID    uint
	NewStateID uint
}

// UpdateOrderMatriceCommand 订单完成后从远端快照回写实付总额
type UpdateOrderMatriceCommand struct {
	OrderID string
}

// UpdatePayPalOrderCacheCommand 刷新远端订单快照缓存
type UpdatePayPalOrderCacheCommand struct {
	OrderID string
	Order   *types.OrderPayload
}

// PrunePayPalOrderCacheCommand 清除远端订单快照缓存
type PrunePayPalOrderCacheCommand struct {
	OrderID string
}
