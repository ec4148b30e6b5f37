package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/flaboy/pin"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

// Envelope PayPal webhook通知的外层结构
type Envelope struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	Resource     json.RawMessage `json:"resource"`
	CreateTime   time.Time       `json:"create_time"`
}

// PayPal webhook事件类型到内部事件类型的映射
var eventKinds = map[string]types.EventKind{
	"CHECKOUT.ORDER.APPROVED":            types.EventOrderApproved,
	"CHECKOUT.ORDER.COMPLETED":           types.EventOrderCompleted,
	"CHECKOUT.PAYMENT-APPROVAL.REVERSED": types.EventOrderApprovalReversed,
	"PAYMENT.CAPTURE.COMPLETED":          types.EventCaptureCompleted,
	"PAYMENT.CAPTURE.DENIED":             types.EventCaptureDenied,
	"PAYMENT.CAPTURE.PENDING":            types.EventCapturePending,
	"PAYMENT.CAPTURE.REFUNDED":           types.EventCaptureRefunded,
	"PAYMENT.CAPTURE.REVERSED":           types.EventCaptureReversed,
}

// NormalizeEvent 把webhook通知规整为内部事件
// 未知的事件类型返回nil事件，调用方直接确认消息
func NormalizeEvent(envelope *Envelope) (*types.PayPalEvent, error) {
	kind, ok := eventKinds[envelope.EventType]
	if !ok {
		return nil, nil
	}

	event := &types.PayPalEvent{
		Kind:       kind,
		OccurredAt: envelope.CreateTime,
	}

	if kind.IsCaptureKind() {
		capture := &types.CapturePayload{}
		if err := json.Unmarshal(envelope.Resource, capture); err != nil {
			return nil, fmt.Errorf("failed to decode capture resource: %w", err)
		}
		event.Capture = capture
		event.CaptureID = capture.ID
		event.OrderID = capture.RelatedOrderID()
		if event.OrderID == "" {
			return nil, fmt.Errorf("capture %s carries no related order id", capture.ID)
		}
		return event, nil
	}

	order := &types.OrderPayload{}
	if err := json.Unmarshal(envelope.Resource, order); err != nil {
		return nil, fmt.Errorf("failed to decode order resource: %w", err)
	}
	event.Order = order
	event.OrderID = order.ID
	return event, nil
}

// Webhook PayPal webhook入口
type Webhook struct {
	reconciler *checkout.Reconciler
}

func NewWebhook(reconciler *checkout.Reconciler) *Webhook {
	return &Webhook{reconciler: reconciler}
}

// HandleRequest 处理PayPal的webhook请求
// 处理失败返回5xx，由PayPal按重试策略再次投递
func (w *Webhook) HandleRequest(c *pin.Context) error {
	var envelope Envelope
	if err := c.BindJSON(&envelope); err != nil {
		log.Printf("PayPal webhook invalid payload: %v", err)
		c.JSON(400, map[string]string{"error": "invalid payload"})
		return nil
	}

	event, err := NormalizeEvent(&envelope)
	if err != nil {
		log.Printf("PayPal webhook %s cannot be normalized: %v", envelope.ID, err)
		c.JSON(400, map[string]string{"error": "invalid resource"})
		return nil
	}
	if event == nil {
		log.Printf("PayPal webhook event type %s not handled, acknowledging", envelope.EventType)
		c.JSON(200, map[string]string{"status": "ignored"})
		return nil
	}

	if err := w.reconciler.OnEvent(context.Background(), event); err != nil {
		log.Printf("PayPal webhook %s processing failed: %v", envelope.ID, err)
		c.JSON(500, map[string]string{"error": "processing failed"})
		return nil
	}

	c.JSON(200, map[string]string{"status": "ok"})
	return nil
}
