package checkout

import (
	"context"
	"time"
)

// QueryBus 只读查询边界，每次调用返回最新的本地状态快照
type QueryBus interface {
	Handle(ctx context.Context, query interface{}) (interface{}, error)
}

// GetOrderQuery 查找购物车对应的本地订单，不存在时返回ErrOrderNotFound
type GetOrderQuery struct {
	CartID uint
}

// OrderSummary 通用订单读模型
type OrderSummary struct {
	ID             uint
	CurrentStateID uint
	TotalAmount    string
	TotalPaid      string
	Currency       string
}

// GetOrderForPaymentCompletedQuery 捕获完成事件专用读模型查询
type GetOrderForPaymentCompletedQuery struct {
	CartID uint
}

type OrderForPaymentCompleted struct {
	ID              uint
	CurrentStateID  uint
	HasBeenPaid     bool
	TotalAmount     string
	TotalAmountPaid string
	Currency        string
}

// GetOrderForPaymentPendingQuery 捕获等待事件专用读模型查询
type GetOrderForPaymentPendingQuery struct {
	CartID uint
}

type OrderForPaymentPending struct {
	ID          uint
	IsInPending bool
}

// GetOrderForPaymentDeniedQuery 捕获拒绝事件专用读模型查询
type GetOrderForPaymentDeniedQuery struct {
	CartID uint
}

type OrderForPaymentDenied struct {
	ID             uint
	CurrentStateID uint
	HasBeenError   bool
}

// GetOrderForPaymentRefundedQuery 退款事件专用读模型查询
type GetOrderForPaymentRefundedQuery struct {
	CartID uint
}

type OrderForPaymentRefunded struct {
	ID                   uint
	HasBeenPaid          bool
	HasBeenTotallyRefund bool
	TotalAmount          string
	TotalRefund          string
}

// GetOrderForPaymentReversedQuery 撤销事件专用读模型查询
type GetOrderForPaymentReversedQuery struct {
	CartID uint
}

type OrderForPaymentReversed struct {
	ID                   uint
	HasBeenPaid          bool
	HasBeenTotallyRefund bool
}

// GetOrderPaymentQuery 按交易ID查找支付流水，不存在时返回ErrOrderPaymentNotFound
type GetOrderPaymentQuery struct {
	TransactionID string
}

type OrderPaymentSummary struct {
	ID            uint
	OrderID       uint
	TransactionID string
	Amount        string
}

// GetOrderStateConfigurationQuery 获取商户订单状态映射快照
type GetOrderStateConfigurationQuery struct{}

// CartLink 购物车与PayPal订单绑定的只读快照
type CartLink struct {
	CartID            uint
	PayPalOrderID     string
	Status            string // 缓存的远端状态
	FundingSource     string
	IsExpressCheckout bool
	IsHostedFields    bool
	CartTotal         string
	Currency          string
	UpdatedAt         time.Time
}

// CartRepository 根据PayPal订单ID解析本地购物车绑定
// 找不到绑定时返回ErrCartNotLinked，事件无法对账
type CartRepository interface {
	FindByPayPalOrderID(ctx context.Context, orderID string) (*CartLink, error)
}
