package checkout

import (
	"context"
	"log/slog"

	"github.com/flaboy/aira-checkout/pkg/checkout/types"
	"github.com/flaboy/aira-checkout/pkg/fundingsource"
)

type eventHandler func(ctx context.Context, event *types.PayPalEvent) error

// Reconciler 远端支付事件与本地订单状态的对账器
// 每个事件类型映射到一组按顺序执行的处理步骤，任一步骤失败则
// 中止剩余步骤，由事件投递方按至少一次语义重试整个事件
type Reconciler struct {
	commandBus CommandBus
	queryBus   QueryBus
	carts      CartRepository
	fundings   *fundingsource.Translator

	// 无3DS决策时是否拒绝卡支付捕获
	liabilityShiftRequired bool

	logger *slog.Logger
	routes map[types.EventKind][]eventHandler
}

// NewReconciler 创建对账器
func NewReconciler(
	commandBus CommandBus,
	queryBus QueryBus,
	carts CartRepository,
	fundings *fundingsource.Translator,
	liabilityShiftRequired bool,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		commandBus:             commandBus,
		queryBus:               queryBus,
		carts:                  carts,
		fundings:               fundings,
		liabilityShiftRequired: liabilityShiftRequired,
		logger:                 logger,
	}
	r.routes = map[types.EventKind][]eventHandler{
		types.EventOrderCreated: {
			r.savePayPalOrder,
			r.prunePayPalOrderCache,
		},
		types.EventOrderApproved: {
			r.savePayPalOrder,
			r.capturePayPalOrder,
			r.prunePayPalOrderCache,
		},
		types.EventOrderNotApproved: {
			r.savePayPalOrder,
		},
		types.EventOrderCompleted: {
			r.savePayPalOrder,
			r.updatePayPalOrderMatrice,
			r.prunePayPalOrderCache,
		},
		types.EventOrderApprovalReversed: {
			r.savePayPalOrder,
			r.prunePayPalOrderCache,
		},
		types.EventOrderFetched: {
			r.updatePayPalOrderCache,
		},
		types.EventCaptureCompleted: {
			r.createPaidOrder,
			r.createOrderPayment,
			r.setPaymentCompletedOrderStatus,
		},
		types.EventCapturePending: {
			r.createPendingOrder,
			r.setPaymentPendingOrderStatus,
		},
		types.EventCaptureDenied: {
			r.setPaymentDeniedOrderStatus,
		},
		types.EventCaptureRefunded: {
			r.setPaymentRefundedOrderStatus,
		},
		types.EventCaptureReversed: {
			r.setPaymentReversedOrderStatus,
		},
	}
	return r
}

// OnEvent 处理一个已投递的远端事件，可对同一逻辑事件安全地重复调用
func (r *Reconciler) OnEvent(ctx context.Context, event *types.PayPalEvent) error {
	handlers, ok := r.routes[event.Kind]
	if !ok {
		r.logger.Info("No handler registered for event kind, skipping",
			"kind", event.Kind, "paypal_order_id", event.OrderID)
		return nil
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// orderStateConfiguration 获取当前的订单状态映射快照
func (r *Reconciler) orderStateConfiguration(ctx context.Context) (*OrderStateConfiguration, error) {
	result, err := r.queryBus.Handle(ctx, GetOrderStateConfigurationQuery{})
	if err != nil {
		return nil, err
	}
	return result.(*OrderStateConfiguration), nil
}
