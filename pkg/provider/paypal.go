package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/plutov/paypal/v4"

	"github.com/flaboy/aira-checkout/pkg/checkout/types"
	"github.com/flaboy/aira-checkout/pkg/config"
)

// Client PayPal Orders API客户端
type Client struct {
	pp *paypal.Client
}

// Init 初始化PayPal客户端
func (c *Client) Init() error {
	// 根据配置选择环境
	environment := paypal.APIBaseSandBox
	if config.Config.PayPal.Live {
		environment = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(
		config.Config.PayPal.ClientID,
		config.Config.PayPal.ClientSecret,
		environment,
	)
	if err != nil {
		return err
	}

	// 获取访问令牌
	_, err = client.GetAccessToken(context.Background())
	if err != nil {
		return err
	}

	c.pp = client
	log.Printf("PayPal checkout client initialized successfully")
	return nil
}

// GetOrder 拉取远端订单详情
// 直接反序列化原始响应，保留authentication_result等SDK未覆盖的字段
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.OrderPayload, error) {
	req, err := c.pp.NewRequest(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", c.pp.APIBase, orderID), nil)
	if err != nil {
		return nil, err
	}

	order := &types.OrderPayload{}
	if err := c.pp.SendWithAuth(req, order); err != nil {
		return nil, fmt.Errorf("failed to get PayPal order %s: %w", orderID, err)
	}
	return order, nil
}

// CaptureOrder 捕获已批准的订单
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error) {
	capture, err := c.pp.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture PayPal order %s: %w", orderID, err)
	}
	return capture, nil
}
