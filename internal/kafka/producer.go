package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/eDyablo/finance/internal/models"
)

// Producer publishes ledger events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeExecuted publishes an event for a committed buy or sell
func (p *Producer) PublishTradeExecuted(ctx context.Context, t *models.Transaction) error {
	price := t.Price
	event := models.LedgerEvent{
		EventType: models.EventTradeExecuted,
		UserID:    t.UserID,
		Symbol:    t.Symbol,
		Shares:    t.Amount,
		Price:     &price,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, t.Symbol, event)
}

// PublishUserRegistered publishes an event for a newly created account
func (p *Producer) PublishUserRegistered(ctx context.Context, userID int64) error {
	event := models.LedgerEvent{
		EventType: models.EventUserRegistered,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, fmt.Sprintf("user-%d", userID), event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
