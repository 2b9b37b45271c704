package pkg

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const EventHeader = "event"

// KafkaProducer 关系事件的同步生产者
type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	return &KafkaProducer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// SendEvent 以成员 id 作为 key，同一成员的事件落在同一分区保持有序
func (p *KafkaProducer) SendEvent(ctx context.Context, memberID uint64, event string, payload []byte) error {
	msg := kafka.Message{
		Key:     []byte(strconv.FormatUint(memberID, 10)),
		Value:   payload,
		Headers: []kafka.Header{{Key: EventHeader, Value: []byte(event)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("unable to publish %s event: %w", event, err)
	}
	return nil
}
