package models

import (
	"time"

	"github.com/flaboy/aira-checkout/pkg/migration"
)

// Order 商户本地订单，仅在资金已经移动或等待移动时由命令创建
type Order struct {
	ID             uint   `gorm:"primaryKey"`
	CartID         uint   `gorm:"not null;uniqueIndex"` // 每个购物车只允许一个订单
	PaymentModule  string `gorm:"size:50"`
	CurrentStateID uint   `gorm:"not null"`
	PaymentMethod  string `gorm:"size:50"` // 展示用支付方式名称

	TotalAmount   string `gorm:"size:20"`
	TotalPaid     string `gorm:"size:20"`
	TotalRefunded string `gorm:"size:20"`
	Currency      string `gorm:"size:10;default:'USD'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *Order) TableName() string {
	return "ar_orders"
}

// OrderStateHistory 订单状态历史，paid/error等标志从历史推导而来
type OrderStateHistory struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"not null;index"`
	StateID   uint `gorm:"not null"`
	CreatedAt time.Time
}

func (h *OrderStateHistory) TableName() string {
	return "ar_order_state_history"
}

func init() {
	migration.RegisterAutoMigrateModels(&Order{}, &OrderStateHistory{})
}
