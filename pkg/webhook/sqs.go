package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/config"
)

// Listener 从SQS消费EventBridge转发的PayPal webhook事件
type Listener struct {
	reconciler *checkout.Reconciler
}

func NewListener(reconciler *checkout.Reconciler) *Listener {
	return &Listener{reconciler: reconciler}
}

func (l *Listener) StartEventListener() {
	// 创建 AWS 配置和 SQS 客户端
	fmt.Println("Starting PayPal event listener...")
	ctx := context.Background()

	var cfg aws.Config
	var err error

	if config.Config.Webhook.AWSAccessKey != "" && config.Config.Webhook.AWSSecret != "" {
		// 使用webhook专用的AWS凭证
		fmt.Printf("Using webhook-specific AWS credentials for region: %s\n", config.Config.Webhook.AWSRegion)
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(config.Config.Webhook.AWSRegion),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.Config.Webhook.AWSAccessKey,
				config.Config.Webhook.AWSSecret,
				"",
			)),
		)
	} else {
		// 回退到默认配置
		fmt.Printf("Using default AWS credentials for region: %s\n", config.Config.Webhook.AWSRegion)
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(config.Config.Webhook.AWSRegion),
		)
	}

	if err != nil {
		fmt.Printf("Error loading AWS config: %v\n", err)
		return
	}

	client := sqs.NewFromConfig(cfg)
	fmt.Printf("AWS SQS client created successfully for queue: %s\n", config.Config.Webhook.SQSQueueURL)

	for {
		// 接收消息
		output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(config.Config.Webhook.SQSQueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20, // 使用长轮询
		})

		if err != nil {
			fmt.Printf("Error receiving message from SQS: %v\n", err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(output.Messages) > 0 {
			fmt.Printf("Received %d messages from SQS\n", len(output.Messages))
		}

		// 处理接收到的消息
		for _, message := range output.Messages {
			fmt.Printf("Processing message: %s\n", *message.MessageId)

			// AWS EventBridge 消息结构，Detail是PayPal原始webhook通知
			var eventBridgeMessage struct {
				Version    string          `json:"version"`
				ID         string          `json:"id"`
				DetailType string          `json:"detail-type"`
				Source     string          `json:"source"`
				Account    string          `json:"account"`
				Time       string          `json:"time"`
				Region     string          `json:"region"`
				Resources  []interface{}   `json:"resources"`
				Detail     json.RawMessage `json:"detail"`
			}

			if err := json.Unmarshal([]byte(*message.Body), &eventBridgeMessage); err != nil {
				fmt.Printf("Error unmarshaling EventBridge message %s: %v\n", *message.MessageId, err)
				fmt.Printf("Message body: %s\n", *message.Body)
				continue
			}

			var envelope Envelope
			if err := json.Unmarshal(eventBridgeMessage.Detail, &envelope); err != nil {
				fmt.Printf("Error unmarshaling webhook envelope %s: %v\n", *message.MessageId, err)
				continue
			}

			fmt.Printf("Processing EventBridge webhook event - Type: %s, Source: %s, EventID: %s\n",
				envelope.EventType, eventBridgeMessage.Source, eventBridgeMessage.ID)

			event, err := NormalizeEvent(&envelope)
			if err != nil {
				// 规整失败说明payload不完整，重试不会成功，确认消息避免死循环
				fmt.Printf("Error normalizing webhook event %s: %v\n", envelope.ID, err)
			} else if event == nil {
				fmt.Printf("Unknown webhook event type: %s, skipping\n", envelope.EventType)
			} else {
				if err := l.reconciler.OnEvent(ctx, event); err != nil {
					// 保留消息等待可见性超时后重新投递
					fmt.Printf("Error handling %s event: %v\n", envelope.EventType, err)
					continue
				}
				fmt.Printf("Successfully handled %s event\n", envelope.EventType)
			}

			// 删除消息
			fmt.Printf("Deleting processed message: %s\n", *message.MessageId)
			_, err = client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(config.Config.Webhook.SQSQueueURL),
				ReceiptHandle: message.ReceiptHandle,
			})

			if err != nil {
				fmt.Printf("Error deleting message %s: %v\n", *message.MessageId, err)
			} else {
				fmt.Printf("Successfully deleted message: %s\n", *message.MessageId)
			}
		}
	}
}
