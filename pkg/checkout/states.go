package checkout

import "fmt"

// 订单状态符号键，对应商户后台配置的状态映射
const (
	StatePaymentAccepted          = "PAYMENT_ACCEPTED"
	StatePaymentError             = "PAYMENT_ERROR"
	StatePartiallyPaid            = "PARTIALLY_PAID"
	StatePartiallyRefunded        = "PARTIALLY_REFUNDED"
	StateRefunded                 = "REFUNDED"
	StateWaitingPayPalPayment     = "WAITING_PAYPAL_PAYMENT"
	StateWaitingCreditCardPayment = "WAITING_CREDIT_CARD_PAYMENT"
	StateWaitingLocalPayment      = "WAITING_LOCAL_PAYMENT"
)

// OrderStateConfiguration 单次对账期间不变的状态映射快照，每个事件重新获取
type OrderStateConfiguration struct {
	byKey map[string]uint
	byID  map[uint]string
}

// NewOrderStateConfiguration 由符号键到状态ID的映射构建快照
func NewOrderStateConfiguration(states map[string]uint) *OrderStateConfiguration {
	byID := make(map[uint]string, len(states))
	for key, id := range states {
		byID[id] = key
	}
	byKey := make(map[string]uint, len(states))
	for key, id := range states {
		byKey[key] = id
	}
	return &OrderStateConfiguration{byKey: byKey, byID: byID}
}

// IdByKey 根据符号键查找状态ID，缺失视为商户配置错误
func (c *OrderStateConfiguration) IdByKey(key string) (uint, error) {
	id, ok := c.byKey[key]
	if !ok {
		return 0, fmt.Errorf("state key %q: %w", key, ErrOrderStateNotConfigured)
	}
	return id, nil
}

// KeyById 根据状态ID反查符号键
func (c *OrderStateConfiguration) KeyById(id uint) (string, error) {
	key, ok := c.byID[id]
	if !ok {
		return "", fmt.Errorf("state id %d: %w", id, ErrOrderStateNotConfigured)
	}
	return key, nil
}

// PaymentAcceptedStateID 支付成功状态ID
func (c *OrderStateConfiguration) PaymentAcceptedStateID() (uint, error) {
	return c.IdByKey(StatePaymentAccepted)
}

// PaymentErrorStateID 支付错误状态ID
func (c *OrderStateConfiguration) PaymentErrorStateID() (uint, error) {
	return c.IdByKey(StatePaymentError)
}

// PartiallyRefundedStateID 部分退款状态ID
func (c *OrderStateConfiguration) PartiallyRefundedStateID() (uint, error) {
	return c.IdByKey(StatePartiallyRefunded)
}

// RefundedStateID 全额退款状态ID
func (c *OrderStateConfiguration) RefundedStateID() (uint, error) {
	return c.IdByKey(StateRefunded)
}
