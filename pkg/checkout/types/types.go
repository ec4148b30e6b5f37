package types

import (
	"time"
)

// EventKind 远端支付事件类型
type EventKind string

const (
	EventOrderCreated          EventKind = "ORDER_CREATED"
	EventOrderApproved         EventKind = "ORDER_APPROVED"
	EventOrderNotApproved      EventKind = "ORDER_NOT_APPROVED"
	EventOrderCompleted        EventKind = "ORDER_COMPLETED"
	EventOrderApprovalReversed EventKind = "ORDER_APPROVAL_REVERSED"
	EventOrderFetched          EventKind = "ORDER_FETCHED"
	EventCaptureCompleted      EventKind = "CAPTURE_COMPLETED"
	EventCaptureDenied         EventKind = "CAPTURE_DENIED"
	EventCapturePending        EventKind = "CAPTURE_PENDING"
	EventCaptureRefunded       EventKind = "CAPTURE_REFUNDED"
	EventCaptureReversed       EventKind = "CAPTURE_REVERSED"
)

// IsCaptureKind 判断事件是否为捕获类事件（携带CaptureID）
func (k EventKind) IsCaptureKind() bool {
	switch k {
	case EventCaptureCompleted, EventCaptureDenied, EventCapturePending,
		EventCaptureRefunded, EventCaptureReversed:
		return true
	}
	return false
}

// Money PayPal金额对象
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// ThreeDSecureResult 3DS验证结果
type ThreeDSecureResult struct {
	EnrollmentStatus     string `json:"enrollment_status"`
	AuthenticationStatus string `json:"authentication_status"`
}

// AuthenticationResult 卡支付验证结果，决定责任转移
type AuthenticationResult struct {
	LiabilityShift string              `json:"liability_shift"`
	ThreeDSecure   *ThreeDSecureResult `json:"three_d_secure,omitempty"`
}

// CardSource 卡支付来源信息
type CardSource struct {
	AuthenticationResult *AuthenticationResult `json:"authentication_result,omitempty"`
}

// PaymentSource 支付来源
type PaymentSource struct {
	Card *CardSource `json:"card,omitempty"`
}

// PaymentCollection 购买单元下已经发生的捕获
type PaymentCollection struct {
	Captures []CapturePayload `json:"captures,omitempty"`
}

// PurchaseUnit 购买单元（本模块始终使用单购买单元订单）
type PurchaseUnit struct {
	ReferenceID string             `json:"reference_id,omitempty"`
	Amount      *Money             `json:"amount,omitempty"`
	Payments    *PaymentCollection `json:"payments,omitempty"`
}

// OrderPayload PayPal订单快照
type OrderPayload struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Intent        string         `json:"intent,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	PaymentSource *PaymentSource `json:"payment_source,omitempty"`
	CreateTime    time.Time      `json:"create_time"`
	UpdateTime    time.Time      `json:"update_time"`
}

// AmountValue 返回订单首个购买单元的金额，缺失时返回空串
func (o *OrderPayload) AmountValue() string {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Amount == nil {
		return ""
	}
	return o.PurchaseUnits[0].Amount.Value
}

// SellerPayableBreakdown 退款后的卖家结算明细
type SellerPayableBreakdown struct {
	TotalRefundedAmount *Money `json:"total_refunded_amount,omitempty"`
}

// RelatedIDs webhook资源关联的上游ID
type RelatedIDs struct {
	OrderID string `json:"order_id,omitempty"`
}

// SupplementaryData 捕获资源的补充数据
type SupplementaryData struct {
	RelatedIDs *RelatedIDs `json:"related_ids,omitempty"`
}

// CapturePayload PayPal捕获/退款快照
type CapturePayload struct {
	ID                     string                  `json:"id"`
	Status                 string                  `json:"status"`
	Amount                 *Money                  `json:"amount,omitempty"`
	FinalCapture           bool                    `json:"final_capture,omitempty"`
	SellerPayableBreakdown *SellerPayableBreakdown `json:"seller_payable_breakdown,omitempty"`
	SupplementaryData      *SupplementaryData      `json:"supplementary_data,omitempty"`
	CreateTime             time.Time               `json:"create_time"`
	UpdateTime             time.Time               `json:"update_time"`
}

// RelatedOrderID 返回捕获所属的PayPal订单ID，缺失时返回空串
func (c *CapturePayload) RelatedOrderID() string {
	if c.SupplementaryData == nil || c.SupplementaryData.RelatedIDs == nil {
		return ""
	}
	return c.SupplementaryData.RelatedIDs.OrderID
}

// AmountValue 返回捕获金额，缺失时返回空串
func (c *CapturePayload) AmountValue() string {
	if c.Amount == nil {
		return ""
	}
	return c.Amount.Value
}

// TotalRefundedValue 返回退款事件中的累计退款金额，缺失时返回空串
func (c *CapturePayload) TotalRefundedValue() string {
	if c.SellerPayableBreakdown == nil || c.SellerPayableBreakdown.TotalRefundedAmount == nil {
		return ""
	}
	return c.SellerPayableBreakdown.TotalRefundedAmount.Value
}

// PayPalEvent 规整后的远端支付事件
// OrderID始终存在；CaptureID和Capture仅在捕获类事件中存在
type PayPalEvent struct {
	Kind       EventKind
	OrderID    string
	CaptureID  string
	Order      *OrderPayload
	Capture    *CapturePayload
	OccurredAt time.Time // 来自payload的时间戳，不是接收时间
}
