package checkout

import "github.com/flaboy/pin/usererrors"

// 对账相关错误
var (
	ErrCartNotLinked           = usererrors.New("checkout.cart_not_linked", "PayPal order is not linked to a cart")
	ErrAmountMismatch          = usererrors.New("checkout.amount_mismatch", "The transaction amount does not match with the cart amount")
	ErrCardSCAFailure          = usererrors.New("checkout.card_sca_failure", "Card Strong Customer Authentication failure")
	ErrCardSCARetry            = usererrors.New("checkout.card_sca_retry", "Card Strong Customer Authentication must be retried")
	ErrNoLiabilityShift        = usererrors.New("checkout.card_no_liability_shift", "No liability shift to card issuer")
	ErrOrderStateNotConfigured = usererrors.New("checkout.order_state_not_configured", "Order state mapping is missing from store configuration")
	ErrOrderNotFound           = usererrors.New("checkout.order_not_found", "Order not found")
	ErrOrderPaymentNotFound    = usererrors.New("checkout.order_payment_not_found", "Order payment not found")
	ErrInvalidAmount           = usererrors.New("checkout.invalid_amount", "Amount is not a valid decimal number")
)
