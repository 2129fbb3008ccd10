package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ticketbot/internal/domain/service"
	"ticketbot/pkg/logger"
)

// Producer writes ticket events to a topic. With no brokers or no topic
// configured every method is a no-op.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

var _ service.TicketEventPublisher = (*Producer)(nil)

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Enabled reports whether events actually leave the process.
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

func (p *Producer) PublishTicketEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	body, err := encodeEvent(event, payload)
	if err != nil {
		logger.Warn("kafka: marshal %s: %v", event, err)
		return
	}

	// Keyed by ticket so a ticket's events stay on one partition.
	key, _ := payload["ticket_id"].(string)
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body}); err != nil {
		logger.Warn("kafka: write %s: %v", event, err)
	}
}

func encodeEvent(event string, payload map[string]interface{}) ([]byte, error) {
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	return json.Marshal(msg)
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
