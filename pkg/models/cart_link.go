package models

import (
	"time"

	"github.com/flaboy/aira-checkout/pkg/migration"
)

// PayPalCartLink 本地购物车与PayPal订单的绑定记录
// 由结账流程创建，对账过程只通过命令更新缓存的远端状态
type PayPalCartLink struct {
	ID            uint   `gorm:"primaryKey"`
	CartID        uint   `gorm:"not null;index"`
	PayPalOrderID string `gorm:"column:paypal_order_id;size:50;not null;uniqueIndex"` // PayPal订单ID
	Status        string `gorm:"size:30"`                      // 缓存的远端状态：CREATED, APPROVED, COMPLETED...
	FundingSource string `gorm:"size:30"`                      // paypal, card, 本地支付方式等

	IsExpressCheckout bool // 快捷结账（需要买家选择配送方式）
	IsHostedFields    bool // 卡支付托管表单（走3DS验证）

	// 结账时锁定的购物车金额，用于捕获前的金额校验
	CartTotal string `gorm:"size:20"`
	Currency  string `gorm:"size:10;default:'USD'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *PayPalCartLink) TableName() string {
	return "ar_paypal_carts"
}

func init() {
	migration.RegisterAutoMigrateModels(&PayPalCartLink{})
}
