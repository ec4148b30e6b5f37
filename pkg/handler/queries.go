package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/database"
	"github.com/flaboy/aira-checkout/pkg/models"
)

// QueryHandler 订单读模型，每次查询返回数据库的最新快照
// paid/error/refunded等标志从状态历史推导，状态被覆盖后依然可见
type QueryHandler struct {
	logger *slog.Logger
}

func NewQueryHandler(logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{logger: logger}
}

func (h *QueryHandler) Handle(ctx context.Context, query interface{}) (interface{}, error) {
	switch q := query.(type) {
	case checkout.GetOrderQuery:
		return h.getOrder(ctx, q)
	case checkout.GetOrderForPaymentCompletedQuery:
		return h.getOrderForPaymentCompleted(ctx, q)
	case checkout.GetOrderForPaymentPendingQuery:
		return h.getOrderForPaymentPending(ctx, q)
	case checkout.GetOrderForPaymentDeniedQuery:
		return h.getOrderForPaymentDenied(ctx, q)
	case checkout.GetOrderForPaymentRefundedQuery:
		return h.getOrderForPaymentRefunded(ctx, q)
	case checkout.GetOrderForPaymentReversedQuery:
		return h.getOrderForPaymentReversed(ctx, q)
	case checkout.GetOrderPaymentQuery:
		return h.getOrderPayment(ctx, q)
	case checkout.GetOrderStateConfigurationQuery:
		return h.getOrderStateConfiguration(ctx)
	default:
		return nil, fmt.Errorf("unknown query type %T", query)
	}
}

func (h *QueryHandler) findOrderByCart(ctx context.Context, cartID uint) (*models.Order, error) {
	var order models.Order
	err := database.Database().WithContext(ctx).
		Where("cart_id = ?", cartID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart #%d: %w", cartID, checkout.ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// historyContains 状态历史中是否出现过给定状态键之一
func (h *QueryHandler) historyContains(ctx context.Context, states *checkout.OrderStateConfiguration, orderID uint, keys ...string) (bool, error) {
	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		id, err := states.IdByKey(key)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
	}

	var count int64
	err := database.Database().WithContext(ctx).
		Model(&models.OrderStateHistory{}).
		Where("order_id = ? AND state_id IN ?", orderID, ids).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (h *QueryHandler) getOrder(ctx context.Context, q checkout.GetOrderQuery) (*checkout.OrderSummary, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	return &checkout.OrderSummary{
		ID:             order.ID,
		CurrentStateID: order.CurrentStateID,
		TotalAmount:    order.TotalAmount,
		TotalPaid:      order.TotalPaid,
		Currency:       order.Currency,
	}, nil
}

func (h *QueryHandler) getOrderForPaymentCompleted(ctx context.Context, q checkout.GetOrderForPaymentCompletedQuery) (*checkout.OrderForPaymentCompleted, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	states, err := h.getOrderStateConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	hasBeenPaid, err := h.historyContains(ctx, states, order.ID,
		checkout.StatePaymentAccepted, checkout.StatePartiallyPaid)
	if err != nil {
		return nil, err
	}
	return &checkout.OrderForPaymentCompleted{
		ID:              order.ID,
		CurrentStateID:  order.CurrentStateID,
		HasBeenPaid:     hasBeenPaid,
		TotalAmount:     order.TotalAmount,
		TotalAmountPaid: order.TotalPaid,
		Currency:        order.Currency,
	}, nil
}

func (h *QueryHandler) getOrderForPaymentPending(ctx context.Context, q checkout.GetOrderForPaymentPendingQuery) (*checkout.OrderForPaymentPending, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	states, err := h.getOrderStateConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	isInPending := false
	for _, key := range []string{
		checkout.StateWaitingPayPalPayment,
		checkout.StateWaitingCreditCardPayment,
		checkout.StateWaitingLocalPayment,
	} {
		id, err := states.IdByKey(key)
		if err != nil {
			return nil, err
		}
		if order.CurrentStateID == id {
			isInPending = true
			break
		}
	}

	return &checkout.OrderForPaymentPending{
		ID:          order.ID,
		IsInPending: isInPending,
	}, nil
}

func (h *QueryHandler) getOrderForPaymentDenied(ctx context.Context, q checkout.GetOrderForPaymentDeniedQuery) (*checkout.OrderForPaymentDenied, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	states, err := h.getOrderStateConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	hasBeenError, err := h.historyContains(ctx, states, order.ID, checkout.StatePaymentError)
	if err != nil {
		return nil, err
	}
	return &checkout.OrderForPaymentDenied{
		ID:             order.ID,
		CurrentStateID: order.CurrentStateID,
		HasBeenError:   hasBeenError,
	}, nil
}

func (h *QueryHandler) getOrderForPaymentRefunded(ctx context.Context, q checkout.GetOrderForPaymentRefundedQuery) (*checkout.OrderForPaymentRefunded, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	states, err := h.getOrderStateConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	hasBeenPaid, err := h.historyContains(ctx, states, order.ID,
		checkout.StatePaymentAccepted, checkout.StatePartiallyPaid)
	if err != nil {
		return nil, err
	}
	hasBeenTotallyRefund, err := h.historyContains(ctx, states, order.ID, checkout.StateRefunded)
	if err != nil {
		return nil, err
	}
	return &checkout.OrderForPaymentRefunded{
		ID:                   order.ID,
		HasBeenPaid:          hasBeenPaid,
		HasBeenTotallyRefund: hasBeenTotallyRefund,
		TotalAmount:          order.TotalAmount,
		TotalRefund:          order.TotalRefunded,
	}, nil
}

func (h *QueryHandler) getOrderForPaymentReversed(ctx context.Context, q checkout.GetOrderForPaymentReversedQuery) (*checkout.OrderForPaymentReversed, error) {
	order, err := h.findOrderByCart(ctx, q.CartID)
	if err != nil {
		return nil, err
	}
	states, err := h.getOrderStateConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	hasBeenPaid, err := h.historyContains(ctx, states, order.ID,
		checkout.StatePaymentAccepted, checkout.StatePartiallyPaid)
	if err != nil {
		return nil, err
	}
	hasBeenTotallyRefund, err := h.historyContains(ctx, states, order.ID, checkout.StateRefunded)
	if err != nil {
		return nil, err
	}
	return &checkout.OrderForPaymentReversed{
		ID:                   order.ID,
		HasBeenPaid:          hasBeenPaid,
		HasBeenTotallyRefund: hasBeenTotallyRefund,
	}, nil
}

func (h *QueryHandler) getOrderPayment(ctx context.Context, q checkout.GetOrderPaymentQuery) (*checkout.OrderPaymentSummary, error) {
	var payment models.OrderPayment
	err := database.Database().WithContext(ctx).
		Where("transaction_id = ?", q.TransactionID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("transaction %s: %w", q.TransactionID, checkout.ErrOrderPaymentNotFound)
	}
	if err != nil {
		return nil, err
	}

	transactionID := ""
	if payment.TransactionID != nil {
		transactionID = *payment.TransactionID
	}
	return &checkout.OrderPaymentSummary{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		TransactionID: transactionID,
		Amount:        payment.Amount,
	}, nil
}

func (h *QueryHandler) getOrderStateConfiguration(ctx context.Context) (*checkout.OrderStateConfiguration, error) {
	var rows []models.OrderState
	err := database.Database().WithContext(ctx).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]uint, len(rows))
	for _, row := range rows {
		mapping[row.Key] = row.StateID
	}
	return checkout.NewOrderStateConfiguration(mapping), nil
}
