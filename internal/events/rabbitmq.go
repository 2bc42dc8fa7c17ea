package events

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQHandler forwards every event to a topic exchange, routed by event
// type (e.g. "rental.approved").
type RabbitMQHandler struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitMQHandler dials url, retrying with exponential backoff, and
// declares the exchange.
func NewRabbitMQHandler(url, exchange string, attempts int) (*RabbitMQHandler, error) {
	h := &RabbitMQHandler{url: url, exchange: exchange}
	if attempts <= 0 {
		attempts = 5
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = h.connect(); err == nil {
			logger.Info("Connected to RabbitMQ", "exchange", exchange)
			return h, nil
		}
		logger.Warn("RabbitMQ connect attempt failed", "attempt", i, "error", err)
		if i < attempts {
			time.Sleep(time.Second * time.Duration(math.Pow(2, float64(i-1))))
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
}

func (h *RabbitMQHandler) connect() error {
	conn, err := amqp.Dial(h.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(h.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	h.conn, h.ch = conn, ch
	return nil
}

func (h *RabbitMQHandler) Name() string { return "rabbitmq" }

// Handle publishes evt as JSON. A closed connection is redialled once; the
// dispatcher retries beyond that.
func (h *RabbitMQHandler) Handle(ctx context.Context, evt domain.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil || h.conn.IsClosed() {
		if err := h.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	logger.ExternalServiceCall("rabbitmq", "publish", "exchange", h.exchange, "routingKey", evt.Type)
	err = h.ch.PublishWithContext(ctx, h.exchange, string(evt.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Timestamp:    evt.OccurredAt,
		Type:         string(evt.Type),
		Body:         body,
	})
	logger.ExternalServiceResult("rabbitmq", "publish", err, "eventID", evt.ID)
	return err
}

func (h *RabbitMQHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ch != nil {
		_ = h.ch.Close()
	}
	if h.conn != nil {
		_ = h.conn.Close()
	}
	h.conn, h.ch = nil, nil
	logger.Info("RabbitMQ connection closed")
}
