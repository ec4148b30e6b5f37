package handler

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/database"
	"github.com/flaboy/aira-checkout/pkg/models"
)

// CartStore 购物车绑定仓库
type CartStore struct{}

func NewCartStore() *CartStore {
	return &CartStore{}
}

// FindByPayPalOrderID 根据PayPal订单ID解析购物车绑定
func (s *CartStore) FindByPayPalOrderID(ctx context.Context, orderID string) (*checkout.CartLink, error) {
	var cart models.PayPalCartLink
	err := database.Database().WithContext(ctx).
		Where("paypal_order_id = ?", orderID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("paypal order %s: %w", orderID, checkout.ErrCartNotLinked)
	}
	if err != nil {
		return nil, err
	}

	return &checkout.CartLink{
		CartID:            cart.CartID,
		PayPalOrderID:     cart.PayPalOrderID,
		Status:            cart.Status,
		FundingSource:     cart.FundingSource,
		IsExpressCheckout: cart.IsExpressCheckout,
		IsHostedFields:    cart.IsHostedFields,
		CartTotal:         cart.CartTotal,
		Currency:          cart.Currency,
		UpdatedAt:         cart.UpdatedAt,
	}, nil
}
