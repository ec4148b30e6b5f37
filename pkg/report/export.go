package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/flaboy/aira-checkout/pkg/database"
	"github.com/flaboy/aira-checkout/pkg/models"
)

const sheetName = "Payments"

// Exporter 对账报表导出器，把本地订单和支付流水写成Excel工作簿
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// row 一条支付流水及其订单和PayPal绑定信息
type row struct {
	OrderID       uint      `gorm:"column:order_id"`
	CartID        uint      `gorm:"column:cart_id"`
	PayPalOrderID string    `gorm:"column:paypal_order_id"`
	TransactionID *string   `gorm:"column:transaction_id"`
	PaymentMethod string    `gorm:"column:payment_method"`
	Amount        string    `gorm:"column:amount"`
	Currency      string    `gorm:"column:currency"`
	TotalAmount   string    `gorm:"column:total_amount"`
	TotalPaid     string    `gorm:"column:total_paid"`
	PaidAt        time.Time `gorm:"column:paid_at"`
}

// WritePaymentsReport 导出指定时间范围内的支付流水报表
func (e *Exporter) WritePaymentsReport(ctx context.Context, w io.Writer, since, until time.Time) error {
	var rows []row
	err := database.Database().WithContext(ctx).
		Model(&models.OrderPayment{}).
		Select(`ar_order_payments.order_id,
			ar_orders.cart_id,
			ar_paypal_carts.paypal_order_id,
			ar_order_payments.transaction_id,
			ar_order_payments.payment_method,
			ar_order_payments.amount,
			ar_order_payments.currency,
			ar_orders.total_amount,
			ar_orders.total_paid,
			ar_order_payments.paid_at`).
		Joins("JOIN ar_orders ON ar_orders.id = ar_order_payments.order_id").
		Joins("JOIN ar_paypal_carts ON ar_paypal_carts.cart_id = ar_orders.cart_id").
		Where("ar_order_payments.created_at BETWEEN ? AND ?", since, until).
		Order("ar_order_payments.id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load payment rows: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return err
	}

	headers := []string{
		"Order ID", "Cart ID", "PayPal Order ID", "Transaction ID",
		"Payment Method", "Amount", "Currency", "Order Total", "Order Paid", "Paid At",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for i, r := range rows {
		transactionID := ""
		if r.TransactionID != nil {
			transactionID = *r.TransactionID
		}
		values := []interface{}{
			r.OrderID, r.CartID, r.PayPalOrderID, transactionID,
			r.PaymentMethod, r.Amount, r.Currency, r.TotalAmount, r.TotalPaid,
			r.PaidAt.Format(time.RFC3339),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	_, err = file.WriteTo(w)
	return err
}
