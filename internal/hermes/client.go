// Package hermes publishes calculation outcomes to NATS.
package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client publishes calculation events. A nil Client means events are disabled.
type Client interface {
	Publish(subject string, data interface{}) error
	Close()
}

// NATSClient publishes JSON events and keeps the calculation stream declared.
type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewNATSClient connects to url and declares the calculation stream. A stream
// that cannot be declared is logged; publishing still goes out on core NATS.
func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("quarterpay"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("calculation events disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("calculation events reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect calculation events to %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("calculation events jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}
	if err := c.declareCalculationStream(ctx); err != nil {
		logger.Warn("calculation stream not declared, events will not be retained",
			"stream", StreamName, "error", err)
	}
	return c, nil
}

// declareCalculationStream retains every quarterpay.calculation.* event for
// one quarter plus slack.
func (c *NATSClient) declareCalculationStream(ctx context.Context) error {
	maxAge, err := time.ParseDuration(StreamMaxAge)
	if err != nil {
		return fmt.Errorf("stream max age %q: %w", StreamMaxAge, err)
	}
	_, err = c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Completed and rejected quarterly salary calculations",
		Subjects:    []string{SubjectWildcard},
		MaxAge:      maxAge,
	})
	return err
}

// Publish sends data as JSON on subject.
func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return c.conn.Publish(subject, payload)
}

// Close flushes pending events before disconnecting.
func (c *NATSClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("calculation events drain failed, closing", "error", err)
		c.conn.Close()
	}
}
