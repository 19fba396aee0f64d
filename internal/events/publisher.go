// Package events publishes order lifecycle messages to RabbitMQ so downstream
// consumers (fulfilment, notifications) can react to checkouts. The storefront
// runs fine without a broker; the publisher is optional.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
)

const (
	OrderCreatedQueue = "order.created"

	publishTimeout = 3 * time.Second
)

// OrderCreated is the wire contract for a finished checkout.
type OrderCreated struct {
	EventID       string             `json:"eventId"`
	EventType     string             `json:"eventType"`
	OrderID       int64              `json:"orderId"`
	CustomerID    int64              `json:"customerId"`
	Total         string             `json:"total"`
	Currency      string             `json:"currency"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus"`
	Items         []OrderCreatedItem `json:"items"`
	Timestamp     time.Time          `json:"timestamp"`
}

type OrderCreatedItem struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderCreatedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	ev := OrderCreated{
		EventID:       uuid.NewString(),
		EventType:     "OrderCreated",
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		Total:         o.Total.StringFixed(2),
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		Timestamp:     time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderCreatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	return p.publishJSON(ctx, OrderCreatedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// MustDial connects to RabbitMQ or exits. Callers should only use it when an
// AMQP URL was actually configured.
func MustDial(url string) *amqp.Connection {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("dial rabbitmq: %v", err)
	}
	return conn
}
