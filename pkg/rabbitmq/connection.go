package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection wraps an AMQP connection.
type Connection struct {
	URL  string
	Conn *amqp.Connection
}

// DialOptions controls how Connect retries.
type DialOptions struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultDialOptions retries for about ten seconds.
var DefaultDialOptions = DialOptions{Attempts: 5, Backoff: 2 * time.Second}

// Connect establishes a connection to RabbitMQ, retrying per opts until ctx
// is done.
func Connect(ctx context.Context, url string, opts DialOptions, logger *slog.Logger) (*Connection, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}

	var err error
	for i := 0; i < opts.Attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			return &Connection{URL: url, Conn: conn}, nil
		}
		if i == opts.Attempts-1 {
			break
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying", "error", err, "backoff", opts.Backoff.String())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}

	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", opts.Attempts, err)
}

// Channel opens a new AMQP channel.
func (c *Connection) Channel() (*amqp.Channel, error) {
	return c.Conn.Channel()
}

// Close closes the connection.
func (c *Connection) Close() error {
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}
