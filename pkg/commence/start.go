package commence

import (
	"log/slog"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/config"
	"github.com/flaboy/aira-checkout/pkg/database"
	"github.com/flaboy/aira-checkout/pkg/fundingsource"
	"github.com/flaboy/aira-checkout/pkg/handler"
	_ "github.com/flaboy/aira-checkout/pkg/models"
	"github.com/flaboy/aira-checkout/pkg/provider"
	"github.com/flaboy/aira-checkout/pkg/webhook"
)

// Checkout 组装好的对账服务组件
type Checkout struct {
	Reconciler *checkout.Reconciler
	Webhook    *webhook.Webhook
	PayPal     *provider.Client
}

// Start 启动服务组件
func Start(cfg *config.CheckoutConfig) (*Checkout, error) {
	config.Config = cfg

	if err := database.Init(cfg.DatabaseDSN); err != nil {
		return nil, err
	}

	paypalClient := &provider.Client{}
	if err := paypalClient.Init(); err != nil {
		return nil, err
	}

	logger := slog.Default()
	commandBus := handler.NewCommandHandler(paypalClient, logger)
	queryBus := handler.NewQueryHandler(logger)
	carts := handler.NewCartStore()

	reconciler := checkout.NewReconciler(
		commandBus,
		queryBus,
		carts,
		fundingsource.NewTranslator(),
		cfg.LiabilityShiftRequired,
		logger,
	)

	// 配置了事件队列时后台消费EventBridge转发的webhook
	if cfg.Webhook.SQSQueueURL != "" {
		go webhook.NewListener(reconciler).StartEventListener()
	}

	return &Checkout{
		Reconciler: reconciler,
		Webhook:    webhook.NewWebhook(reconciler),
		PayPal:     paypalClient,
	}, nil
}
