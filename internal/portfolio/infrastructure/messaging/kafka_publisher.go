// Package messaging 领域事件发布实现：Kafka 与空实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// 领域事件 topic
const (
	TopicTradeExecuted   = "alphaview.trade.executed"
	TopicPricesRefreshed = "alphaview.prices.refreshed"
)

// KafkaPublisher 将领域事件写入 Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建 Kafka 事件发布器
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           5 * time.Second,
	}
	logger.Info(context.Background(), "kafka publisher created", "brokers", brokers)
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) publish(topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
}

// PublishTradeExecuted 发布交易执行事件
func (p *KafkaPublisher) PublishTradeExecuted(event domain.TradeExecutedEvent) error {
	return p.publish(TopicTradeExecuted, event.Ticker, event)
}

// PublishPricesRefreshed 发布价格刷新事件
func (p *KafkaPublisher) PublishPricesRefreshed(event domain.PricesRefreshedEvent) error {
	return p.publish(TopicPricesRefreshed, "prices", event)
}

// Close 关闭底层 writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher 空实现，事件发布未启用时使用
type NopPublisher struct{}

func (NopPublisher) PublishTradeExecuted(domain.TradeExecutedEvent) error     { return nil }
func (NopPublisher) PublishPricesRefreshed(domain.PricesRefreshedEvent) error { return nil }
