package config

import (
	"os"

	"github.com/spf13/cast"
)

type CheckoutConfig struct {
	// 数据库连接
	DatabaseDSN string `cfg:"DATABASE_DSN"`

	// 支付服务配置
	PayPal struct {
		ClientID     string `cfg:"CLIENT_ID"`
		ClientSecret string `cfg:"CLIENT_SECRET"`
		Live         bool   `cfg:"LIVE" default:"false"`
	} `cfg:"PAYPAL"`

	// 3DS责任转移配置：开启后无决策的卡支付将被拒绝
	LiabilityShiftRequired bool `cfg:"LIABILITY_SHIFT_REQUIRED" default:"false"`

	// Webhook事件队列配置 (EventBridge -> SQS)
	Webhook struct {
		AWSRegion    string `cfg:"AWS_REGION"`
		AWSAccessKey string `cfg:"AWS_ACCESS_KEY"`
		AWSSecret    string `cfg:"AWS_SECRET"`
		SQSQueueURL  string `cfg:"SQS_QUEUE_URL"`
	} `cfg:"WEBHOOK"`
}

var Config *CheckoutConfig

// LoadFromEnv 从环境变量加载配置，前缀为CHECKOUT_
func LoadFromEnv() *CheckoutConfig {
	cfg := &CheckoutConfig{}
	cfg.DatabaseDSN = os.Getenv("CHECKOUT_DATABASE_DSN")
	cfg.PayPal.ClientID = os.Getenv("CHECKOUT_PAYPAL_CLIENT_ID")
	cfg.PayPal.ClientSecret = os.Getenv("CHECKOUT_PAYPAL_CLIENT_SECRET")
	cfg.PayPal.Live = cast.ToBool(os.Getenv("CHECKOUT_PAYPAL_LIVE"))
	cfg.LiabilityShiftRequired = cast.ToBool(os.Getenv("CHECKOUT_LIABILITY_SHIFT_REQUIRED"))
	cfg.Webhook.AWSRegion = os.Getenv("CHECKOUT_WEBHOOK_AWS_REGION")
	cfg.Webhook.AWSAccessKey = os.Getenv("CHECKOUT_WEBHOOK_AWS_ACCESS_KEY")
	cfg.Webhook.AWSSecret = os.Getenv("CHECKOUT_WEBHOOK_AWS_SECRET")
	cfg.Webhook.SQSQueueURL = os.Getenv("CHECKOUT_WEBHOOK_SQS_QUEUE_URL")
	return cfg
}
