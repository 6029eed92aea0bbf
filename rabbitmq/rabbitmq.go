package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"backendprojects/graph/model"
)

// Channel is the part of *amqp.Channel the publisher and consumer use.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Conn owns the broker connection and the channel opened on it.
type Conn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Conn{conn: conn, ch: ch}, nil
}

func (c *Conn) Channel() Channel { return c.ch }

func (c *Conn) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

// declareQueue declares a durable queue.
func declareQueue(ch Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

// Publisher sends every domain event as JSON to the events queue, and
// copies selected event types to their own work queues.
type Publisher struct {
	mu     sync.Mutex
	ch     Channel
	queue  string
	routes map[model.EventType][]string
	log    logrus.FieldLogger
}

func NewPublisher(ch Channel, queue string, log logrus.FieldLogger) (*Publisher, error) {
	if err := declareQueue(ch, queue); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, queue: queue, routes: map[model.EventType][]string{}, log: log}, nil
}

// Route also delivers events of type t to queue.
func (p *Publisher) Route(t model.EventType, queue string) error {
	if queue == p.queue {
		return fmt.Errorf("queue %s already receives every event", queue)
	}
	if err := declareQueue(p.ch, queue); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[t] = append(p.routes[t], queue)
	return nil
}

func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, queue := range append([]string{p.queue}, p.routes[event.Type]...) {
		err = p.ch.Publish(
			"",    // exchange
			queue, // routing key
			false, // mandatory
			false, // immediate
			msg)
		if err != nil {
			return fmt.Errorf("publish %s to %s: %w", event.Type, queue, err)
		}
		p.log.WithFields(logrus.Fields{"queue": queue, "event": event.Type}).Debug("event published")
	}
	return nil
}

// Handler processes one event taken off the queue.
type Handler func(ctx context.Context, event model.Event) error

// Consume delivers events from queue to handle until ctx is cancelled or
// the delivery channel closes. Handled messages are acked; messages that
// cannot be decoded or handled are dropped with a nack.
func Consume(ctx context.Context, ch Channel, queue string, handle Handler, log logrus.FieldLogger) error {
	if err := declareQueue(ch, queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log.WithField("queue", queue).Info("waiting for events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			handleDelivery(ctx, d, handle, log)
		}
	}
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handle Handler, log logrus.FieldLogger) {
	var event model.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.WithError(err).Warn("dropping undecodable event")
		_ = d.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := handle(ctx, event); err != nil {
		log.WithError(err).WithField("event", event.Type).Error("event handler failed")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
