// Package service holds outbound integrations used by the HTTP layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/queue"
)

// ShowPublisher sends show change events to RabbitMQ.  The connection is
// opened lazily and re-dialled after a failure; publish errors are logged
// and returned so callers can ignore them without failing the request.
type ShowPublisher struct {
	cfg  config.BrokerConfig
	log  *zap.Logger
	dial func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewShowPublisher returns a publisher for cfg.Queue.
func NewShowPublisher(cfg config.BrokerConfig, log *zap.Logger) *ShowPublisher {
	return &ShowPublisher{cfg: cfg, log: log, dial: amqp.Dial}
}

func (p *ShowPublisher) connection() (*amqp.Connection, error) {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p.conn = conn
	return conn, nil
}

// PublishShowChanged marshals ev and publishes it as a persistent message
// on the default exchange, routed to the activity queue.
func (p *ShowPublisher) PublishShowChanged(ctx context.Context, ev queue.ShowChangedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection()
	if err != nil {
		p.log.Warn("rabbitmq: publish skipped", zap.Error(err))
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err), zap.Uint64("show_id", ev.ShowID))
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *ShowPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// NopPublisher discards events.  Used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishShowChanged(context.Context, queue.ShowChangedEvent) error { return nil }
