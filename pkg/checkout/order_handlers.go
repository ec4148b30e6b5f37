package checkout

import (
	"context"
	"fmt"

	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

// savePayPalOrder 把最新的远端订单快照持久化到购物车绑定上
// COMPLETED是终态，过期的webhook不允许把状态回退
func (r *Reconciler) savePayPalOrder(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	var orderStatus string
	switch event.Kind {
	case types.EventOrderCreated:
		orderStatus = "CREATED"
	case types.EventOrderApproved:
		orderStatus = "APPROVED"
	case types.EventOrderCompleted:
		orderStatus = "COMPLETED"
	case types.EventOrderApprovalReversed:
		orderStatus = "PENDING_APPROVAL"
	case types.EventOrderNotApproved:
		orderStatus = "PENDING"
	}

	if cart.Status == "COMPLETED" {
		r.logger.Info("Cart already reached COMPLETED status, ignoring outdated webhook",
			"paypal_order_id", event.OrderID, "incoming_status", orderStatus)
		return nil
	}

	// 状态变化或事件时间比缓存更新时才写入，按时间戳容忍乱序投递
	if cart.Status != orderStatus || cart.UpdatedAt.Before(event.Order.UpdateTime) {
		return r.commandBus.Handle(ctx, SavePayPalOrderCommand{
			OrderID: event.OrderID,
			Status:  orderStatus,
			Order:   event.Order,
		})
	}
	return nil
}

// capturePayPalOrder 订单批准后发起捕获
// 快捷结账的paypal支付需要买家先选择配送方式，由前端完成捕获
func (r *Reconciler) capturePayPalOrder(ctx context.Context, event *types.PayPalEvent) error {
	cart, err := r.carts.FindByPayPalOrderID(ctx, event.OrderID)
	if err != nil {
		return err
	}

	if cart.IsExpressCheckout && cart.FundingSource == "paypal" {
		r.logger.Info("PayPal Order cannot be captured yet",
			"paypal_order_id", event.OrderID, "funding_source", cart.FundingSource)
		return nil
	}

	if cart.IsHostedFields {
		decision := ContinueWithAuthorization(event.Order)
		r.logger.Info("3D Secure authentication result",
			"paypal_order_id", event.OrderID, "decision", decision.String())

		switch decision {
		case ThreeDSReject:
			return fmt.Errorf("order #%s: %w", event.OrderID, ErrCardSCAFailure)
		case ThreeDSRetry:
			return fmt.Errorf("order #%s: %w", event.OrderID, ErrCardSCARetry)
		case ThreeDSNoDecision:
			if r.liabilityShiftRequired {
				return fmt.Errorf("order #%s: %w", event.OrderID, ErrNoLiabilityShift)
			}
		}
	}

	// 捕获前校验远端订单金额与购物车金额一致，容差0.05
	check, err := CheckAmount(event.Order.AmountValue(), cart.CartTotal)
	if err != nil {
		return err
	}
	if check != AmountFullPaid {
		return fmt.Errorf("order #%s: %w", event.OrderID, ErrAmountMismatch)
	}

	return r.commandBus.Handle(ctx, CapturePayPalOrderCommand{
		OrderID:       event.OrderID,
		FundingSource: cart.FundingSource,
	})
}

// updatePayPalOrderMatrice 订单完成后回写实付总额
func (r *Reconciler) updatePayPalOrderMatrice(ctx context.Context, event *types.PayPalEvent) error {
	return r.commandBus.Handle(ctx, UpdateOrderMatriceCommand{
		OrderID: event.OrderID,
	})
}

// updatePayPalOrderCache 刷新远端订单快照缓存
func (r *Reconciler) updatePayPalOrderCache(ctx context.Context, event *types.PayPalEvent) error {
	return r.commandBus.Handle(ctx, UpdatePayPalOrderCacheCommand{
		OrderID: event.OrderID,
		Order:   event.Order,
	})
}

// prunePayPalOrderCache 清除远端订单快照缓存
func (r *Reconciler) prunePayPalOrderCache(ctx context.Context, event *types.PayPalEvent) error {
	return r.commandBus.Handle(ctx, PrunePayPalOrderCacheCommand{
		OrderID: event.OrderID,
	})
}
