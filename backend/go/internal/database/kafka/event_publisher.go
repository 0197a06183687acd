package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"ecofix/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 *kafka.Writer 中 EventPublisher 用到的部分。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher 把业务事件序列化为 JSON 并写入 Kafka。
// 消息以用户 ID 作为 key，同一用户的事件落在同一分区，保持顺序。
type EventPublisher struct {
	writer messageWriter
}

// NewEventPublisher 创建一个新的 EventPublisher 实例。
func NewEventPublisher(writer *kafka.Writer) *EventPublisher {
	return &EventPublisher{writer: writer}
}

// Publish 发送一条事件。
func (p *EventPublisher) Publish(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	return nil
}

// Close 关闭底层的 writer 连接。
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
