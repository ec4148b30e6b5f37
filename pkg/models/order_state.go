package models

import (
	"github.com/flaboy/aira-checkout/pkg/migration"
)

// OrderState 商户配置的订单状态映射：符号键 -> 本地状态ID
// 缺少必需的键属于配置错误，对账时直接上报
type OrderState struct {
	ID      uint   `gorm:"primaryKey"`
	Key     string `gorm:"size:50;not null;uniqueIndex"` // PAYMENT_ACCEPTED, REFUNDED...
	StateID uint   `gorm:"not null"`
}

func (s *OrderState) TableName() string {
	return "ar_order_states"
}

func init() {
	migration.RegisterAutoMigrateModels(&OrderState{})
}
