package checkout_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/checkout/types"
	"github.com/flaboy/aira-checkout/pkg/fundingsource"
)

// fakeCommandBus 记录收到的命令，onCommand用来模拟命令产生的持久化效果
type fakeCommandBus struct {
	commands  []interface{}
	fail      error
	onCommand func(command interface{})
}

func (b *fakeCommandBus) Handle(ctx context.Context, command interface{}) error {
	b.commands = append(b.commands, command)
	if b.onCommand != nil {
		b.onCommand(command)
	}
	return b.fail
}

// fakeQueryBus 脚本化的读模型，nil字段表示对应记录不存在
type fakeQueryBus struct {
	states    *checkout.OrderStateConfiguration
	order     *checkout.OrderSummary
	completed *checkout.OrderForPaymentCompleted
	pending   *checkout.OrderForPaymentPending
	denied    *checkout.OrderForPaymentDenied
	refunded  *checkout.OrderForPaymentRefunded
	reversed  *checkout.OrderForPaymentReversed
	payment   *checkout.OrderPaymentSummary
}

func (b *fakeQueryBus) Handle(ctx context.Context, query interface{}) (interface{}, error) {
	switch query.(type) {
	case checkout.GetOrderStateConfigurationQuery:
		return b.states, nil
	case checkout.GetOrderQuery:
		if b.order == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.order, nil
	case checkout.GetOrderForPaymentCompletedQuery:
		if b.completed == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.completed, nil
	case checkout.GetOrderForPaymentPendingQuery:
		if b.pending == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.pending, nil
	case checkout.GetOrderForPaymentDeniedQuery:
		if b.denied == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.denied, nil
	case checkout.GetOrderForPaymentRefundedQuery:
		if b.refunded == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.refunded, nil
	case checkout.GetOrderForPaymentReversedQuery:
		if b.reversed == nil {
			return nil, checkout.ErrOrderNotFound
		}
		return b.reversed, nil
	case checkout.GetOrderPaymentQuery:
		if b.payment == nil {
			return nil, checkout.ErrOrderPaymentNotFound
		}
		return b.payment, nil
	}
	return nil, fmt.Errorf("unexpected query %T", query)
}

type fakeCarts struct {
	links map[string]*checkout.CartLink
}

func (c *fakeCarts) FindByPayPalOrderID(ctx context.Context, orderID string) (*checkout.CartLink, error) {
	link, ok := c.links[orderID]
	if !ok {
		return nil, fmt.Errorf("paypal order %s: %w", orderID, checkout.ErrCartNotLinked)
	}
	return link, nil
}

const (
	stateAccepted          uint = 2
	statePartiallyPaid     uint = 3
	statePartiallyRefunded uint = 4
	stateRefunded          uint = 5
	statePaymentError      uint = 8
	stateWaitingPayPal     uint = 10
	stateWaitingCard       uint = 11
	stateWaitingLocal      uint = 12
)

func testStates() *checkout.OrderStateConfiguration {
	return checkout.NewOrderStateConfiguration(map[string]uint{
		checkout.StatePaymentAccepted:          stateAccepted,
		checkout.StatePartiallyPaid:            statePartiallyPaid,
		checkout.StatePartiallyRefunded:        statePartiallyRefunded,
		checkout.StateRefunded:                 stateRefunded,
		checkout.StatePaymentError:             statePaymentError,
		checkout.StateWaitingPayPalPayment:     stateWaitingPayPal,
		checkout.StateWaitingCreditCardPayment: stateWaitingCard,
		checkout.StateWaitingLocalPayment:      stateWaitingLocal,
	})
}

func newTestReconciler(commands *fakeCommandBus, queries *fakeQueryBus, carts *fakeCarts, liabilityShiftRequired bool) *checkout.Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return checkout.NewReconciler(commands, queries, carts,
		fundingsource.NewTranslator(), liabilityShiftRequired, logger)
}

func cartLink(fundingSource, total string) *checkout.CartLink {
	return &checkout.CartLink{
		CartID:        7,
		PayPalOrderID: "5O190127TN364715T",
		Status:        "CREATED",
		FundingSource: fundingSource,
		CartTotal:     total,
		Currency:      "EUR",
		UpdatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func singleCart(link *checkout.CartLink) *fakeCarts {
	return &fakeCarts{links: map[string]*checkout.CartLink{link.PayPalOrderID: link}}
}

func orderEvent(kind types.EventKind, amount string) *types.PayPalEvent {
	return &types.PayPalEvent{
		Kind:    kind,
		OrderID: "5O190127TN364715T",
		Order: &types.OrderPayload{
			ID:     "5O190127TN364715T",
			Status: "APPROVED",
			PurchaseUnits: []types.PurchaseUnit{
				{Amount: &types.Money{CurrencyCode: "EUR", Value: amount}},
			},
			UpdateTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func captureEvent(kind types.EventKind, amount string) *types.PayPalEvent {
	return &types.PayPalEvent{
		Kind:      kind,
		OrderID:   "5O190127TN364715T",
		CaptureID: "3C679366HH908993F",
		Capture: &types.CapturePayload{
			ID:         "3C679366HH908993F",
			Status:     "COMPLETED",
			Amount:     &types.Money{CurrencyCode: "EUR", Value: amount},
			CreateTime: time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC),
		},
	}
}

func TestReconciler_UnknownEventKind_Ignored(t *testing.T) {
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, &fakeCarts{}, false)

	err := r.OnEvent(context.Background(), &types.PayPalEvent{Kind: "SOMETHING_ELSE"})
	require.NoError(t, err)
	assert.Empty(t, commands.commands)
}

func TestReconciler_OrderApproved_SaveCapturePrune(t *testing.T) {
	commands := &fakeCommandBus{}
	queries := &fakeQueryBus{states: testStates()}
	carts := singleCart(cartLink("card", "49.99"))
	r := newTestReconciler(commands, queries, carts, false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderApproved, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 3)
	save, ok := commands.commands[0].(checkout.SavePayPalOrderCommand)
	require.True(t, ok)
	assert.Equal(t, "APPROVED", save.Status)

	capture, ok := commands.commands[1].(checkout.CapturePayPalOrderCommand)
	require.True(t, ok)
	assert.Equal(t, "5O190127TN364715T", capture.OrderID)
	assert.Equal(t, "card", capture.FundingSource)

	_, ok = commands.commands[2].(checkout.PrunePayPalOrderCacheCommand)
	assert.True(t, ok)
}

func TestReconciler_OrderApproved_ExpressCheckoutPayPalSkipsCapture(t *testing.T) {
	commands := &fakeCommandBus{}
	link := cartLink("paypal", "49.99")
	link.IsExpressCheckout = true
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, singleCart(link), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderApproved, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 2)
	_, ok := commands.commands[0].(checkout.SavePayPalOrderCommand)
	assert.True(t, ok)
	_, ok = commands.commands[1].(checkout.PrunePayPalOrderCacheCommand)
	assert.True(t, ok)
}

func TestReconciler_OrderApproved_AmountMismatchBlocksCapture(t *testing.T) {
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()},
		singleCart(cartLink("card", "100.00")), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderApproved, "30.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, checkout.ErrAmountMismatch)

	// 金额校验在捕获前，订单快照仍然已保存
	require.Len(t, commands.commands, 1)
	_, ok := commands.commands[0].(checkout.SavePayPalOrderCommand)
	assert.True(t, ok)
}

func TestReconciler_OrderApproved_HostedFieldsSCA(t *testing.T) {
	withAuthResult := func(liabilityShift, enrollment, authentication string) *types.PayPalEvent {
		event := orderEvent(types.EventOrderApproved, "49.99")
		event.Order.PaymentSource = cardOrder(liabilityShift, enrollment, authentication).PaymentSource
		return event
	}

	newHostedFieldsReconciler := func(commands *fakeCommandBus, liabilityShiftRequired bool) *checkout.Reconciler {
		link := cartLink("card", "49.99")
		link.IsHostedFields = true
		return newTestReconciler(commands, &fakeQueryBus{states: testStates()}, singleCart(link), liabilityShiftRequired)
	}

	t.Run("rejected authentication blocks capture", func(t *testing.T) {
		commands := &fakeCommandBus{}
		r := newHostedFieldsReconciler(commands, false)
		err := r.OnEvent(context.Background(), withAuthResult("NO", "Y", "R"))
		assert.ErrorIs(t, err, checkout.ErrCardSCAFailure)
	})

	t.Run("unfinished authentication asks for retry", func(t *testing.T) {
		commands := &fakeCommandBus{}
		r := newHostedFieldsReconciler(commands, false)
		err := r.OnEvent(context.Background(), withAuthResult("UNKNOWN", "Y", "Y"))
		assert.ErrorIs(t, err, checkout.ErrCardSCARetry)
	})

	t.Run("no decision with liability shift required blocks capture", func(t *testing.T) {
		commands := &fakeCommandBus{}
		r := newHostedFieldsReconciler(commands, true)
		err := r.OnEvent(context.Background(), withAuthResult("NO", "Y", ""))
		assert.ErrorIs(t, err, checkout.ErrNoLiabilityShift)
	})

	t.Run("no decision without requirement proceeds", func(t *testing.T) {
		commands := &fakeCommandBus{}
		r := newHostedFieldsReconciler(commands, false)
		err := r.OnEvent(context.Background(), withAuthResult("NO", "Y", ""))
		require.NoError(t, err)

		var captured bool
		for _, command := range commands.commands {
			if _, ok := command.(checkout.CapturePayPalOrderCommand); ok {
				captured = true
			}
		}
		assert.True(t, captured)
	})
}

func TestReconciler_SaveOrder_CompletedStatusIsTerminal(t *testing.T) {
	commands := &fakeCommandBus{}
	link := cartLink("paypal", "49.99")
	link.Status = "COMPLETED"
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, singleCart(link), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderCreated, "49.99"))
	require.NoError(t, err)

	// 过期的CREATED事件不能把终态回退，只剩缓存清理
	require.Len(t, commands.commands, 1)
	_, ok := commands.commands[0].(checkout.PrunePayPalOrderCacheCommand)
	assert.True(t, ok)
}

func TestReconciler_SaveOrder_StaleDuplicateSkipsWrite(t *testing.T) {
	commands := &fakeCommandBus{}
	link := cartLink("paypal", "49.99")
	link.Status = "PENDING"
	link.UpdatedAt = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC) // 比事件时间更新
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, singleCart(link), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderNotApproved, "49.99"))
	require.NoError(t, err)
	assert.Empty(t, commands.commands)
}

func TestReconciler_OrderCompleted_UpdatesMatriceAndPrunesCache(t *testing.T) {
	commands := &fakeCommandBus{}
	link := cartLink("paypal", "49.99")
	link.Status = "APPROVED"
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, singleCart(link), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderCompleted, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 3)
	save := commands.commands[0].(checkout.SavePayPalOrderCommand)
	assert.Equal(t, "COMPLETED", save.Status)
	_, ok := commands.commands[1].(checkout.UpdateOrderMatriceCommand)
	assert.True(t, ok)
	_, ok = commands.commands[2].(checkout.PrunePayPalOrderCacheCommand)
	assert.True(t, ok)
}

func TestReconciler_OrderFetched_OnlyRefreshesCache(t *testing.T) {
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()},
		singleCart(cartLink("paypal", "49.99")), false)

	err := r.OnEvent(context.Background(), orderEvent(types.EventOrderFetched, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 1)
	cache, ok := commands.commands[0].(checkout.UpdatePayPalOrderCacheCommand)
	require.True(t, ok)
	assert.Equal(t, "5O190127TN364715T", cache.OrderID)
	assert.NotNil(t, cache.Order)
}

func TestReconciler_CaptureCompleted_FirstDelivery_FullAmount(t *testing.T) {
	queries := &fakeQueryBus{states: testStates()}
	commands := &fakeCommandBus{}
	// 模拟创建订单命令落库的效果：后续步骤能查到订单、首笔流水和支付历史
	commands.onCommand = func(command interface{}) {
		if _, ok := command.(checkout.CreateOrderCommand); ok {
			queries.order = &checkout.OrderSummary{
				ID: 11, CurrentStateID: stateAccepted,
				TotalAmount: "49.99", TotalPaid: "49.99", Currency: "EUR",
			}
			queries.payment = &checkout.OrderPaymentSummary{
				ID: 21, OrderID: 11, TransactionID: "3C679366HH908993F", Amount: "49.99",
			}
			queries.completed = &checkout.OrderForPaymentCompleted{ID: 11, HasBeenPaid: true}
		}
	}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureCompleted, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 1)
	create := commands.commands[0].(checkout.CreateOrderCommand)
	assert.Equal(t, uint(7), create.CartID)
	assert.Equal(t, stateAccepted, create.StateID)
	assert.Equal(t, "3C679366HH908993F", create.TransactionID)
	assert.Equal(t, "49.99", create.PaidAmount)
	assert.Equal(t, "Card", create.PaymentMethod)
}

func TestReconciler_CaptureCompleted_Redelivery_NoNewCommands(t *testing.T) {
	queries := &fakeQueryBus{
		states: testStates(),
		order: &checkout.OrderSummary{
			ID: 11, CurrentStateID: stateAccepted,
			TotalAmount: "49.99", TotalPaid: "49.99", Currency: "EUR",
		},
		payment: &checkout.OrderPaymentSummary{
			ID: 21, OrderID: 11, TransactionID: "3C679366HH908993F", Amount: "49.99",
		},
		completed: &checkout.OrderForPaymentCompleted{ID: 11, HasBeenPaid: true},
	}
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureCompleted, "49.99"))
	require.NoError(t, err)
	assert.Empty(t, commands.commands)
}

func TestReconciler_CaptureCompleted_PartialAmount_CreatesPartiallyPaidOrder(t *testing.T) {
	queries := &fakeQueryBus{states: testStates()}
	commands := &fakeCommandBus{}
	commands.onCommand = func(command interface{}) {
		switch command.(type) {
		case checkout.CreateOrderCommand:
			queries.order = &checkout.OrderSummary{
				ID: 11, CurrentStateID: statePartiallyPaid,
				TotalAmount: "49.99", TotalPaid: "0.00", Currency: "EUR",
			}
			queries.completed = &checkout.OrderForPaymentCompleted{ID: 11, HasBeenPaid: true}
		}
	}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureCompleted, "30.00"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 2)
	create := commands.commands[0].(checkout.CreateOrderCommand)
	assert.Equal(t, statePartiallyPaid, create.StateID)
	assert.Empty(t, create.TransactionID)
	assert.Empty(t, create.PaidAmount)

	// 部分支付时流水记录捕获金额和交易ID
	payment := commands.commands[1].(checkout.AddOrderPaymentCommand)
	assert.Equal(t, uint(11), payment.OrderID)
	assert.Equal(t, "30.00", payment.Amount)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "3C679366HH908993F", *payment.TransactionID)
}

func TestReconciler_CaptureCompleted_AfterPending_UpdatesStatus(t *testing.T) {
	queries := &fakeQueryBus{
		states: testStates(),
		order: &checkout.OrderSummary{
			ID: 11, CurrentStateID: stateWaitingCard,
			TotalAmount: "49.99", TotalPaid: "0.00", Currency: "EUR",
		},
		completed: &checkout.OrderForPaymentCompleted{ID: 11, HasBeenPaid: false},
	}
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureCompleted, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 2)
	payment := commands.commands[0].(checkout.AddOrderPaymentCommand)
	assert.Equal(t, uint(11), payment.OrderID)

	status := commands.commands[1].(checkout.UpdateOrderStatusCommand)
	assert.Equal(t, uint(11), status.OrderID)
	assert.Equal(t, stateAccepted, status.NewStateID)
}

func TestReconciler_CapturePending_CreatesWaitingOrder(t *testing.T) {
	tests := []struct {
		fundingSource string
		wantState     uint
	}{
		{"card", stateWaitingCard},
		{"paypal", stateWaitingPayPal},
		{"blik", stateWaitingLocal},
	}

	for _, tt := range tests {
		t.Run(tt.fundingSource, func(t *testing.T) {
			queries := &fakeQueryBus{states: testStates()}
			commands := &fakeCommandBus{}
			commands.onCommand = func(command interface{}) {
				if _, ok := command.(checkout.CreateOrderCommand); ok {
					queries.pending = &checkout.OrderForPaymentPending{ID: 11, IsInPending: true}
				}
			}
			r := newTestReconciler(commands, queries, singleCart(cartLink(tt.fundingSource, "49.99")), false)

			err := r.OnEvent(context.Background(), captureEvent(types.EventCapturePending, "49.99"))
			require.NoError(t, err)

			require.Len(t, commands.commands, 1)
			create := commands.commands[0].(checkout.CreateOrderCommand)
			assert.Equal(t, tt.wantState, create.StateID)
			assert.Empty(t, create.TransactionID)
		})
	}
}

func TestReconciler_CaptureDenied_NoCartLinked_Acknowledged(t *testing.T) {
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, &fakeQueryBus{states: testStates()}, &fakeCarts{}, false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureDenied, "49.99"))
	require.NoError(t, err)
	assert.Empty(t, commands.commands)
}

func TestReconciler_CaptureDenied_MarksPaymentError(t *testing.T) {
	queries := &fakeQueryBus{
		states: testStates(),
		denied: &checkout.OrderForPaymentDenied{ID: 11, CurrentStateID: stateWaitingCard},
	}
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureDenied, "49.99"))
	require.NoError(t, err)

	require.Len(t, commands.commands, 1)
	status := commands.commands[0].(checkout.UpdateOrderStatusCommand)
	assert.Equal(t, statePaymentError, status.NewStateID)
}

func TestReconciler_CaptureDenied_AlreadyInError_NoNewCommands(t *testing.T) {
	queries := &fakeQueryBus{
		states: testStates(),
		denied: &checkout.OrderForPaymentDenied{ID: 11, CurrentStateID: statePaymentError, HasBeenError: true},
	}
	commands := &fakeCommandBus{}
	r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

	err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureDenied, "49.99"))
	require.NoError(t, err)
	assert.Empty(t, commands.commands)
}

func TestReconciler_CaptureRefunded(t *testing.T) {
	refundEvent := func(totalRefunded string) *types.PayPalEvent {
		event := captureEvent(types.EventCaptureRefunded, "20.00")
		event.Capture.SellerPayableBreakdown = &types.SellerPayableBreakdown{
			TotalRefundedAmount: &types.Money{CurrencyCode: "EUR", Value: totalRefunded},
		}
		return event
	}

	t.Run("partial refund", func(t *testing.T) {
		queries := &fakeQueryBus{
			states: testStates(),
			refunded: &checkout.OrderForPaymentRefunded{
				ID: 11, HasBeenPaid: true,
				TotalAmount: "49.99", TotalRefund: "20.00",
			},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), refundEvent("20.00"))
		require.NoError(t, err)

		require.Len(t, commands.commands, 1)
		status := commands.commands[0].(checkout.UpdateOrderStatusCommand)
		assert.Equal(t, statePartiallyRefunded, status.NewStateID)
	})

	t.Run("total refund", func(t *testing.T) {
		queries := &fakeQueryBus{
			states: testStates(),
			refunded: &checkout.OrderForPaymentRefunded{
				ID: 11, HasBeenPaid: true,
				TotalAmount: "49.99", TotalRefund: "49.99",
			},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), refundEvent("49.99"))
		require.NoError(t, err)

		require.Len(t, commands.commands, 1)
		status := commands.commands[0].(checkout.UpdateOrderStatusCommand)
		assert.Equal(t, stateRefunded, status.NewStateID)
	})

	t.Run("falls back to remote refund total", func(t *testing.T) {
		queries := &fakeQueryBus{
			states: testStates(),
			refunded: &checkout.OrderForPaymentRefunded{
				ID: 11, HasBeenPaid: true,
				TotalAmount: "49.99", TotalRefund: "0.00",
			},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), refundEvent("49.99"))
		require.NoError(t, err)

		require.Len(t, commands.commands, 1)
		status := commands.commands[0].(checkout.UpdateOrderStatusCommand)
		assert.Equal(t, stateRefunded, status.NewStateID)
	})

	t.Run("already totally refunded", func(t *testing.T) {
		queries := &fakeQueryBus{
			states: testStates(),
			refunded: &checkout.OrderForPaymentRefunded{
				ID: 11, HasBeenPaid: true, HasBeenTotallyRefund: true,
				TotalAmount: "49.99", TotalRefund: "49.99",
			},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), refundEvent("49.99"))
		require.NoError(t, err)
		assert.Empty(t, commands.commands)
	})

	t.Run("never paid", func(t *testing.T) {
		queries := &fakeQueryBus{
			states: testStates(),
			refunded: &checkout.OrderForPaymentRefunded{
				ID: 11, HasBeenPaid: false,
				TotalAmount: "49.99", TotalRefund: "0.00",
			},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), refundEvent("49.99"))
		require.NoError(t, err)
		assert.Empty(t, commands.commands)
	})
}

func TestReconciler_CaptureReversed(t *testing.T) {
	t.Run("paid order gets refunded", func(t *testing.T) {
		queries := &fakeQueryBus{
			states:   testStates(),
			reversed: &checkout.OrderForPaymentReversed{ID: 11, HasBeenPaid: true},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureReversed, "49.99"))
		require.NoError(t, err)

		require.Len(t, commands.commands, 1)
		status := commands.commands[0].(checkout.UpdateOrderStatusCommand)
		assert.Equal(t, stateRefunded, status.NewStateID)
	})

	t.Run("already refunded", func(t *testing.T) {
		queries := &fakeQueryBus{
			states:   testStates(),
			reversed: &checkout.OrderForPaymentReversed{ID: 11, HasBeenPaid: true, HasBeenTotallyRefund: true},
		}
		commands := &fakeCommandBus{}
		r := newTestReconciler(commands, queries, singleCart(cartLink("card", "49.99")), false)

		err := r.OnEvent(context.Background(), captureEvent(types.EventCaptureReversed, "49.99"))
		require.NoError(t, err)
		assert.Empty(t, commands.commands)
	})
}
