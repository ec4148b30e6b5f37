package models

import (
	"time"

	"github.com/flaboy/aira-checkout/pkg/migration"
)

// OrderPayment 订单支付流水，transaction_id唯一约束保证同一捕获不会重复入账
type OrderPayment struct {
	ID            uint    `gorm:"primaryKey"`
	OrderID       uint    `gorm:"not null;index"`
	TransactionID *string `gorm:"size:50;uniqueIndex"` // PayPal捕获ID，可为空
	PaymentMethod string  `gorm:"size:50"`
	Amount        string  `gorm:"size:20"`
	Currency      string  `gorm:"size:10"`
	PaidAt        time.Time

	CreatedAt time.Time
}

func (p *OrderPayment) TableName() string {
	return "ar_order_payments"
}

func init() {
	migration.RegisterAutoMigrateModels(&OrderPayment{})
}
