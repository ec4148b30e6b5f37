package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

const paymentModuleName = "aira_checkout"

// createPaidOrder 首个捕获完成事件创建本地订单
// 订单已存在时（Pending转Completed或重复投递）记录日志后跳过
func (r *Reconciler) createPaidOrder(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	_, err = r.queryBus.Handle(ctx, GetOrderQuery{CartID: cart.CartID})
	if err == nil {
		r.logger.Info("Order for PayPal Order is already created",
			"paypal_order_id", event.OrderID, "cart_id", cart.CartID)
		return nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return err
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}

	capture := event.Capture
	transactionID := ""
	paidAmount := ""
	var stateID uint

	if capture.AmountValue() == "" {
		if stateID, err = states.IdByKey(StatePartiallyPaid); err != nil {
			return err
		}
	} else {
		check, err := CheckAmount(capture.AmountValue(), cart.CartTotal)
		if err != nil {
			return err
		}
		switch check {
		case AmountNotFullPaid:
			if stateID, err = states.IdByKey(StatePartiallyPaid); err != nil {
				return err
			}
		case AmountFullPaid:
			if stateID, err = states.IdByKey(StatePaymentAccepted); err != nil {
				return err
			}
			transactionID = event.CaptureID
			paidAmount = capture.AmountValue()
		case AmountTooMuchPaid:
			if stateID, err = states.IdByKey(StatePaymentAccepted); err != nil {
				return err
			}
		}
	}

	return r.commandBus.Handle(ctx, CreateOrderCommand{
		CartID:        cart.CartID,
		PaymentModule: paymentModuleName,
		StateID:       stateID,
		PaymentMethod: r.fundings.PaymentMethodName(cart.FundingSource),
		TransactionID: transactionID,
		PaidAmount:    paidAmount,
	})
}

// createOrderPayment 为捕获追加支付流水，捕获ID已入账则跳过
func (r *Reconciler) createOrderPayment(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderQuery{CartID: cart.CartID})
	if err != nil {
		return err
	}
	order := result.(*OrderSummary)

	_, err = r.queryBus.Handle(ctx, GetOrderPaymentQuery{TransactionID: event.CaptureID})
	if err == nil {
		r.logger.Info("Order Payment is already created",
			"paypal_order_id", event.OrderID, "transaction_id", event.CaptureID)
		return nil
	}
	if !errors.Is(err, ErrOrderPaymentNotFound) {
		return err
	}

	capture := event.Capture
	paymentAmount := ""
	var transactionID *string

	if capture.AmountValue() == "" {
		// 捕获没有携带金额时无法比较，只记录交易ID保证去重
		id := event.CaptureID
		transactionID = &id
	} else {
		orderAmount, err := decimal.NewFromString(order.TotalAmount)
		if err != nil {
			return fmt.Errorf("order amount %q: %w", order.TotalAmount, ErrInvalidAmount)
		}
		alreadyPaid, err := decimal.NewFromString(order.TotalPaid)
		if err != nil {
			return fmt.Errorf("order paid amount %q: %w", order.TotalPaid, ErrInvalidAmount)
		}

		// 交易ID和金额仅在捕获金额与剩余应付不一致时记录
		// TODO: confirm with payments team whether the id should be recorded on the matching case instead
		remainingDue := orderAmount.Round(2).Sub(alreadyPaid.Round(2))
		check, err := CheckAmount(capture.AmountValue(), remainingDue.String())
		if err != nil {
			return err
		}
		if check != AmountFullPaid {
			paymentAmount = capture.AmountValue()
			id := event.CaptureID
			transactionID = &id
		}
	}

	return r.commandBus.Handle(ctx, AddOrderPaymentCommand{
		OrderID:       order.ID,
		PaidAt:        capture.CreateTime,
		PaymentMethod: r.fundings.PaymentMethodName(cart.FundingSource),
		Amount:        paymentAmount,
		Currency:      order.Currency,
		TransactionID: transactionID,
	})
}

// setPaymentCompletedOrderStatus 捕获完成后把订单置为支付成功
func (r *Reconciler) setPaymentCompletedOrderStatus(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderForPaymentCompletedQuery{CartID: cart.CartID})
	if err != nil {
		return err
	}
	order := result.(*OrderForPaymentCompleted)

	if order.HasBeenPaid {
		r.logger.Info("Order has already been paid",
			"paypal_order_id", event.OrderID, "order_id", order.ID)
		return nil
	}

	stateID, err := states.PaymentAcceptedStateID()
	if err != nil {
		return err
	}
	return r.commandBus.Handle(ctx, UpdateOrderStatusCommand{
		OrderID:    order.ID,
		NewStateID: stateID,
	})
}

// createPendingOrder 捕获处于等待时按funding source创建等待状态的本地订单
func (r *Reconciler) createPendingOrder(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	_, err = r.queryBus.Handle(ctx, GetOrderQuery{CartID: cart.CartID})
	if err == nil {
		r.logger.Info("Order for PayPal Order is already created",
			"paypal_order_id", event.OrderID, "cart_id", cart.CartID)
		return nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return err
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}
	stateID, err := states.IdByKey(waitingStateKey(cart.FundingSource))
	if err != nil {
		return err
	}

	return r.commandBus.Handle(ctx, CreateOrderCommand{
		CartID:        cart.CartID,
		PaymentModule: paymentModuleName,
		StateID:       stateID,
		PaymentMethod: r.fundings.PaymentMethodName(cart.FundingSource),
	})
}

// setPaymentPendingOrderStatus 已有订单但不在等待状态时切换到对应等待状态
func (r *Reconciler) setPaymentPendingOrderStatus(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderForPaymentPendingQuery{CartID: cart.CartID})
	if err != nil {
		return err
	}
	order := result.(*OrderForPaymentPending)

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}
	stateID, err := states.IdByKey(waitingStateKey(cart.FundingSource))
	if err != nil {
		return err
	}

	if order.IsInPending {
		return nil
	}

	return r.commandBus.Handle(ctx, UpdateOrderStatusCommand{
		OrderID:    order.ID,
		NewStateID: stateID,
	})
}

// setPaymentDeniedOrderStatus 捕获被拒绝时把订单置为支付错误
// 找不到购物车绑定或订单时视为无事可做：订单从未创建过
func (r *Reconciler) setPaymentDeniedOrderStatus(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, ErrCartNotLinked) {
			r.logger.Info("No cart linked for denied capture, nothing to mark",
				"paypal_order_id", event.OrderID)
			return nil
		}
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderForPaymentDeniedQuery{CartID: cart.CartID})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			r.logger.Info("No order created for denied capture, nothing to mark",
				"paypal_order_id", event.OrderID)
			return nil
		}
		return err
	}
	order := result.(*OrderForPaymentDenied)

	// 状态历史里已有支付错误则不再重复写入
	if order.HasBeenError {
		return nil
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}
	stateID, err := states.PaymentErrorStateID()
	if err != nil {
		return err
	}
	return r.commandBus.Handle(ctx, UpdateOrderStatusCommand{
		OrderID:    order.ID,
		NewStateID: stateID,
	})
}

// setPaymentRefundedOrderStatus 按累计退款金额区分部分退款与全额退款
func (r *Reconciler) setPaymentRefundedOrderStatus(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderForPaymentRefundedQuery{CartID: cart.CartID})
	if err != nil {
		return err
	}
	order := result.(*OrderForPaymentRefunded)

	if !order.HasBeenPaid {
		return nil
	}
	if order.HasBeenTotallyRefund {
		r.logger.Info("Order has already been totally refunded",
			"paypal_order_id", event.OrderID, "order_id", order.ID)
		return nil
	}

	// 本地还没有退款记账时回退到退款事件携带的累计退款金额
	refundTotal := order.TotalRefund
	if isZeroAmount(refundTotal) && event.Capture.TotalRefundedValue() != "" {
		refundTotal = event.Capture.TotalRefundedValue()
	}

	check, err := CheckAmount(refundTotal, order.TotalAmount)
	if err != nil {
		return err
	}

	var stateID uint
	if check == AmountNotFullPaid {
		if stateID, err = states.PartiallyRefundedStateID(); err != nil {
			return err
		}
	} else {
		if stateID, err = states.RefundedStateID(); err != nil {
			return err
		}
	}
	return r.commandBus.Handle(ctx, UpdateOrderStatusCommand{
		OrderID:    order.ID,
		NewStateID: stateID,
	})
}

// setPaymentReversedOrderStatus 捕获被撤销时直接置为全额退款
func (r *Reconciler) setPaymentReversedOrderStatus(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	states, err := r.orderStateConfiguration(ctx)
	if err != nil {
		return err
	}

	result, err := r.queryBus.Handle(ctx, GetOrderForPaymentReversedQuery{CartID: cart.CartID})
	if err != nil {
		return err
	}
	order := result.(*OrderForPaymentReversed)

	if !order.HasBeenPaid {
		return nil
	}
	if order.HasBeenTotallyRefund {
		return nil
	}

	stateID, err := states.RefundedStateID()
	if err != nil {
		return err
	}
	return r.commandBus.Handle(ctx, UpdateOrderStatusCommand{
		OrderID:    order.ID,
		NewStateID: stateID,
	})
}

// waitingStateKey 按funding source选择等待支付的状态键
func waitingStateKey(fundingSource string) string {
	switch fundingSource {
	case "card":
		return StateWaitingCreditCardPayment
	case "paypal":
		return StateWaitingPayPalPayment
	default:
		return StateWaitingLocalPayment
	}
}

// isZeroAmount 金额为空或为零
func isZeroAmount(amount string) bool {
	if amount == "" {
		return true
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return true
	}
	return dec.IsZero()
}
