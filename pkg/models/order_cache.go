package models

import (
	"time"

	"github.com/flaboy/aira-checkout/pkg/migration"
)

// PayPalOrderCache PayPal订单快照缓存，避免重复拉取远端订单
type PayPalOrderCache struct {
	ID            uint   `gorm:"primaryKey"`
	PayPalOrderID string `gorm:"column:paypal_order_id;size:50;not null;uniqueIndex"`
	Payload       string `gorm:"type:text"` // 远端订单JSON快照

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *PayPalOrderCache) TableName() string {
	return "ar_paypal_order_cache"
}

func init() {
	migration.RegisterAutoMigrateModels(&PayPalOrderCache{})
}
