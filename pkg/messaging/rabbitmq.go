package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
)

// ErrConnectionClosed is returned once Close has been called
var ErrConnectionClosed = errors.New("rabbitmq connection is permanently closed")

// RabbitMQ holds a publishing connection with a confirm-mode channel.
// Declared exchanges are re-declared after a reconnect.
type RabbitMQ struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	exchanges map[string]struct{}
	config    *config.RabbitMQConfig
	logger    *logger.Logger
	mu        sync.RWMutex
	closed    bool
}

// New dials RabbitMQ and opens the publishing channel
func New(cfg *config.RabbitMQConfig, log *logger.Logger) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		exchanges: make(map[string]struct{}),
		config:    cfg,
		logger:    log.WithComponent("rabbitmq"),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

// connect must be called with mu held or before the value is shared
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.config.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	for name := range r.exchanges {
		if err := declareTopic(ch, name); err != nil {
			conn.Close()
			return fmt.Errorf("failed to redeclare exchange %s: %w", name, err)
		}
	}

	r.conn = conn
	r.channel = ch

	r.logger.Info().Int("exchanges", len(r.exchanges)).Msg("connected to RabbitMQ")
	return nil
}

// Channel returns the current channel
func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Close closes the channel and connection. Later reconnects fail.
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	if r.channel != nil {
		if err := r.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			r.logger.Warn().Err(err).Msg("failed to close channel")
		}
	}

	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.logger.Info().Msg("RabbitMQ connection closed")
	return nil
}

// Health reports connection state and the exchanges in use
func (r *RabbitMQ) Health() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.exchanges))
	for name := range r.exchanges {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{
		"status":    "up",
		"exchanges": fmt.Sprint(names),
	}

	if r.conn == nil || r.conn.IsClosed() {
		status["status"] = "down"
		status["error"] = "connection closed"
	}

	return status
}

// DeclareExchange declares a durable topic exchange and remembers it for reconnects
func (r *RabbitMQ) DeclareExchange(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := declareTopic(r.channel, name); err != nil {
		return err
	}
	r.exchanges[name] = struct{}{}
	return nil
}

func declareTopic(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
}

// Reconnect replaces the connection, retrying up to MaxRetries times
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrConnectionClosed
	}

	if r.conn != nil && !r.conn.IsClosed() {
		r.conn.Close()
	}

	attempts := r.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.ReconnectDelay):
			}
		}

		r.logger.Info().Int("attempt", i+1).Msg("attempting to reconnect to RabbitMQ")

		if lastErr = r.connect(); lastErr == nil {
			return nil
		}
		r.logger.Warn().Err(lastErr).Msg("reconnection attempt failed")
	}

	return fmt.Errorf("failed to reconnect after %d attempts: %w", attempts, lastErr)
}
