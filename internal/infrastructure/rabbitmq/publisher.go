package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lost-found-api/internal/pkg/id"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	publishTimeout = 5 * time.Second
	redialDelay    = 5 * time.Second
)

// Publisher emits domain events to a durable topic exchange.
type Publisher struct {
	url      string
	exchange string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewPublisher dials url, declares exchange and starts a reconnect watcher.
func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange}
	conn, ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn, p.channel = conn, ch
	go p.watch(conn)

	log.Info().Str("exchange", exchange).Msg("rabbitmq publisher initialized")
	return p, nil
}

func (p *Publisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

// watch redials after an unexpected connection loss until Close is called.
func (p *Publisher) watch(conn *amqp.Connection) {
	closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if closeErr == nil {
		return
	}
	log.Error().Err(closeErr).Msg("rabbitmq connection lost, reconnecting")
	for {
		time.Sleep(redialDelay)
		p.mu.RLock()
		closed := p.closed
		p.mu.RUnlock()
		if closed {
			return
		}
		next, ch, err := p.dial()
		if err != nil {
			log.Error().Err(err).Msg("rabbitmq reconnect failed")
			continue
		}
		p.mu.Lock()
		p.conn, p.channel = next, ch
		p.mu.Unlock()
		log.Info().Msg("rabbitmq reconnected")
		go p.watch(next)
		return
	}
}

// Publish marshals payload as JSON and sends it with routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	msg, err := message(payload, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	log.Debug().Str("routing_key", routingKey).Int("body_size", len(msg.Body)).Msg("event published")
	return nil
}

func message(payload interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    now,
		MessageId:    id.New(),
	}, nil
}

// Close stops reconnection and releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
