// Package kafka 提供文档事件的 Kafka 生产者。
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"rag-system-go/internal/config"
	"rag-system-go/pkg/events"
	"rag-system-go/pkg/log"
)

// Producer 将文档生命周期事件写入单一 topic。
// nil Producer 是合法的空实现：事件发布被禁用时所有方法直接返回。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 根据配置创建事件生产者；未启用时返回 nil。
func NewProducer(cfg config.KafkaConfig) *Producer {
	if !cfg.Enabled {
		log.Info("Kafka 事件发布未启用")
		return nil
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 事件生产者初始化成功")
	return &Producer{writer: writer}
}

// PublishDocumentEvent 发布一条文档事件。事件是尽力而为的审计信息，
// 发布失败只记录日志，不影响请求结果。
func (p *Producer) PublishDocumentEvent(ctx context.Context, event events.DocumentEvent) {
	if p == nil {
		return
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("[KafkaProducer] 序列化文档事件失败: %v", err)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DocumentID),
		Value: eventBytes,
	})
	if err != nil {
		log.Errorf("[KafkaProducer] 发布文档事件失败, type: %s, document: %s, error: %v",
			event.Type, event.DocumentID, err)
		return
	}
	log.Infof("[KafkaProducer] 已发布文档事件, type: %s, document: %s", event.Type, event.DocumentID)
}

// Close 关闭底层 writer。
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
