package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TopicOrderPaid is published after an order transitions to paid.
const TopicOrderPaid = "order.paid"

// DefaultQueue receives every storefront event.
const DefaultQueue = "storefront_events"

// Publisher delivers domain events to other services.
type Publisher interface {
	Publish(ctx context.Context, id string, topic string, payload []byte) error
	Close()
}

// NopPublisher drops events. Used when AMQP_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, id string, topic string, payload []byte) error {
	log.Debugf("[Events] AMQP disabled, dropping %s event %s", topic, id)
	return nil
}

func (NopPublisher) Close() {}

type RabbitMQPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewRabbitMQPublisher connects to url, retrying up to attempts times, and
// declares a durable queue.
func NewRabbitMQPublisher(url string, queueName string, attempts int) (*RabbitMQPublisher, error) {
	if attempts < 1 {
		attempts = 1
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warnf("[Events] Failed to connect to RabbitMQ (%d/%d): %v", i+1, attempts, err)
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   queueName,
	}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, id string, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			MessageId:    id,
			Type:         topic,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Infof("[Events] Published %s message %s to queue %s", topic, id, p.queue)
	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// FromURL returns a RabbitMQ publisher when url is set and reachable,
// otherwise a NopPublisher.
func FromURL(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	p, err := NewRabbitMQPublisher(url, DefaultQueue, 3)
	if err != nil {
		log.Errorf("[Events] %v; order events will not be published", err)
		return NopPublisher{}
	}
	return p
}
