package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// OrderExchange receives every order lifecycle event.
	OrderExchange = "storefront.orders"
	// OrderPlacedKey routes events emitted when checkout places an order.
	OrderPlacedKey = "order.placed"
	// OrderQueue is bound to OrderPlacedKey.
	OrderQueue = "order_queue"
)

// OrderPlaced is the payload of an order.placed event.
type OrderPlaced struct {
	OrderNo  string    `json:"orderNo"`
	CartID   string    `json:"cartId"`
	Email    string    `json:"email,omitempty"`
	Total    string    `json:"total"`
	Currency string    `json:"currency"`
	Items    int       `json:"items"`
	PlacedAt time.Time `json:"placedAt"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
	// guards channel publishes
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the order exchange and queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq connected", zap.String("exchange", OrderExchange), zap.String("queue", OrderQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		OrderExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", OrderExchange, err)
	}

	if _, err := ch.QueueDeclare(
		OrderQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}

	if err := ch.QueueBind(OrderQueue, OrderPlacedKey, OrderExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishOrderPlaced publishes a persistent order.placed event.
func (c *Client) PublishOrderPlaced(event OrderPlaced) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		OrderExchange,
		OrderPlacedKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.OrderNo,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("order event sent", zap.String("order_no", event.OrderNo))
	return nil
}

// ConsumeOrderEvents delivers order.placed events to handler in a
// background goroutine. Handler failures are requeued; undecodable
// messages are dropped.
func (c *Client) ConsumeOrderEvents(handler func(OrderPlaced) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for order events", zap.String("queue", OrderQueue))

	go func() {
		for msg := range msgs {
			processDelivery(msg, handler, c.log)
		}
	}()
	return nil
}

func processDelivery(msg amqp.Delivery, handler func(OrderPlaced) error, log *zap.Logger) {
	var event OrderPlaced
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("dropping undecodable order event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := handler(event); err != nil {
		log.Warn("order event handler failed", zap.String("order_no", event.OrderNo), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error("failed to ack message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}
