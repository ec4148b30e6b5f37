package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/database"
	"github.com/flaboy/aira-checkout/pkg/models"
	"github.com/flaboy/aira-checkout/pkg/provider"
)

// CommandHandler 把对账命令落到数据库和支付渠道
// 所有写入都按至少一次投递设计：唯一约束冲突视为重复投递，记日志后跳过
type CommandHandler struct {
	paypal *provider.Client
	logger *slog.Logger
}

func NewCommandHandler(paypal *provider.Client, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{paypal: paypal, logger: logger}
}

func (h *CommandHandler) Handle(ctx context.Context, command interface{}) error {
	switch cmd := command.(type) {
	case checkout.SavePayPalOrderCommand:
		return h.savePayPalOrder(ctx, cmd)
	case checkout.CapturePayPalOrderCommand:
		return h.capturePayPalOrder(ctx, cmd)
	case checkout.CreateOrderCommand:
		return h.createOrder(ctx, cmd)
	case checkout.AddOrderPaymentCommand:
		return h.addOrderPayment(ctx, cmd)
	case checkout.UpdateOrderStatusCommand:
		return h.updateOrderStatus(ctx, cmd)
	case checkout.UpdateOrderMatriceCommand:
		return h.updateOrderMatrice(ctx, cmd)
	case checkout.UpdatePayPalOrderCacheCommand:
		return h.updatePayPalOrderCache(ctx, cmd)
	case checkout.PrunePayPalOrderCacheCommand:
		return h.prunePayPalOrderCache(ctx, cmd)
	default:
		return fmt.Errorf("unknown command type %T", command)
	}
}

func (h *CommandHandler) savePayPalOrder(ctx context.Context, cmd checkout.SavePayPalOrderCommand) error {
	return database.Database().WithContext(ctx).
		Model(&models.PayPalCartLink{}).
		Where("paypal_order_id = ?", cmd.OrderID).
		Update("status", cmd.Status).Error
}

func (h *CommandHandler) capturePayPalOrder(ctx context.Context, cmd checkout.CapturePayPalOrderCommand) error {
	capture, err := h.paypal.CaptureOrder(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	h.logger.Info("PayPal order capture requested",
		"paypal_order_id", cmd.OrderID,
		"funding_source", cmd.FundingSource,
		"status", capture.Status)
	return nil
}

// createOrder 创建本地订单、首条状态历史，以及校验通过时的首笔支付流水
// cart_id唯一约束兜底并发下的重复创建
func (h *CommandHandler) createOrder(ctx context.Context, cmd checkout.CreateOrderCommand) error {
	var cart models.PayPalCartLink
	err := database.Database().WithContext(ctx).
		Where("cart_id = ?", cmd.CartID).First(&cart).Error
	if err != nil {
		return fmt.Errorf("cart #%d: %w", cmd.CartID, err)
	}

	totalPaid := cmd.PaidAmount
	if totalPaid == "" {
		totalPaid = "0.00"
	}

	order := &models.Order{
		CartID:         cmd.CartID,
		PaymentModule:  cmd.PaymentModule,
		CurrentStateID: cmd.StateID,
		PaymentMethod:  cmd.PaymentMethod,
		TotalAmount:    cart.CartTotal,
		TotalPaid:      totalPaid,
		TotalRefunded:  "0.00",
		Currency:       cart.Currency,
	}

	return database.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				h.logger.Info("Order already exists for cart, skipping duplicate create",
					"cart_id", cmd.CartID)
				return nil
			}
			return err
		}

		history := &models.OrderStateHistory{OrderID: order.ID, StateID: cmd.StateID}
		if err := tx.Create(history).Error; err != nil {
			return err
		}

		if cmd.PaidAmount != "" {
			payment := &models.OrderPayment{
				OrderID:       order.ID,
				PaymentMethod: cmd.PaymentMethod,
				Amount:        cmd.PaidAmount,
				Currency:      cart.Currency,
			}
			if cmd.TransactionID != "" {
				id := cmd.TransactionID
				payment.TransactionID = &id
			}
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *CommandHandler) addOrderPayment(ctx context.Context, cmd checkout.AddOrderPaymentCommand) error {
	payment := &models.OrderPayment{
		OrderID:       cmd.OrderID,
		TransactionID: cmd.TransactionID,
		PaymentMethod: cmd.PaymentMethod,
		Amount:        cmd.Amount,
		Currency:      cmd.Currency,
		PaidAt:        cmd.PaidAt,
	}
	err := database.Database().WithContext(ctx).Create(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		h.logger.Info("Order payment already recorded for transaction, skipping",
			"order_id", cmd.OrderID)
		return nil
	}
	return err
}

func (h *CommandHandler) updateOrderStatus(ctx context.Context, cmd checkout.UpdateOrderStatusCommand) error {
	return database.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).
			Where("id = ?", cmd.OrderID).
			Update("current_state_id", cmd.NewStateID).Error
		if err != nil {
			return err
		}
		history := &models.OrderStateHistory{OrderID: cmd.OrderID, StateID: cmd.NewStateID}
		return tx.Create(history).Error
	})
}

// updateOrderMatrice 订单完成后从远端快照回写实付总额
func (h *CommandHandler) updateOrderMatrice(ctx context.Context, cmd checkout.UpdateOrderMatriceCommand) error {
	remote, err := h.paypal.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	totalPaid := decimal.Zero
	for _, unit := range remote.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			if capture.Status != "COMPLETED" || capture.Amount == nil {
				continue
			}
			amount, err := decimal.NewFromString(capture.Amount.Value)
			if err != nil {
				return fmt.Errorf("capture amount %q: %w", capture.Amount.Value, checkout.ErrInvalidAmount)
			}
			totalPaid = totalPaid.Add(amount)
		}
	}

	var cart models.PayPalCartLink
	err = database.Database().WithContext(ctx).
		Where("paypal_order_id = ?", cmd.OrderID).First(&cart).Error
	if err != nil {
		return err
	}

	return database.Database().WithContext(ctx).
		Model(&models.Order{}).
		Where("cart_id = ?", cart.CartID).
		Update("total_paid", totalPaid.StringFixed(2)).Error
}

func (h *CommandHandler) updatePayPalOrderCache(ctx context.Context, cmd checkout.UpdatePayPalOrderCacheCommand) error {
	payload, err := json.Marshal(cmd.Order)
	if err != nil {
		return err
	}
	cache := &models.PayPalOrderCache{
		PayPalOrderID: cmd.OrderID,
		Payload:       string(payload),
	}
	return database.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "paypal_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(cache).Error
}

func (h *CommandHandler) prunePayPalOrderCache(ctx context.Context, cmd checkout.PrunePayPalOrderCacheCommand) error {
	return database.Database().WithContext(ctx).
		Where("paypal_order_id = ?", cmd.OrderID).
		Delete(&models.PayPalOrderCache{}).Error
}
