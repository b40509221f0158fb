package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ChargeEvent is published once per committed charge.
type ChargeEvent struct {
	TransactionID  string    `json:"transactionId"`
	SubscriptionID string    `json:"subscriptionId"`
	DonorID        string    `json:"donorId"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	AmountInUSD    float64   `json:"amountInUSD"`
	Interval       string    `json:"interval"`
	ChargedAt      time.Time `json:"chargedAt"`
}

// Publisher delivers charge events to downstream consumers.
type Publisher interface {
	PublishChargeEvent(ctx context.Context, event ChargeEvent) error
	Close()
}

// EventProducer publishes JSON events to a topic exchange.
type EventProducer struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	l          *zap.SugaredLogger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer dials amqpURL and declares exchange as a durable topic exchange.
func NewEventProducer(l *zap.SugaredLogger, amqpURL, exchange, routingKey string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &EventProducer{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		l:          l,
	}, nil
}

func (p *EventProducer) PublishChargeEvent(ctx context.Context, event ChargeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.TransactionID,
		Timestamp:    event.ChargedAt,
		Body:         payload,
	}); err != nil {
		return err
	}

	p.l.Debugw("published charge event", "exchange", p.exchange, "routing_key", p.routingKey, "transaction_id", event.TransactionID)
	return nil
}

// Close releases channel and connection resources.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher drops events. Used when no broker is configured or reachable.
type NoopPublisher struct{}

func (NoopPublisher) PublishChargeEvent(context.Context, ChargeEvent) error { return nil }

func (NoopPublisher) Close() {}
