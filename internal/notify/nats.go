// Package notify publishes run summaries to NATS, for deployments that do not use SNS.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Header keys set on every published message
const (
	HeaderMessageID = "Ebsconvert-Message-Id"
	HeaderSubject   = "Ebsconvert-Subject"
)

// Conn is the part of *nats.Conn used by the publisher
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	IsClosed() bool
	Drain() error
}

// NATSPublisher publishes run summaries to a NATS subject
type NATSPublisher struct {
	mu      sync.Mutex
	nc      Conn
	dial    func() (Conn, error)
	url     string
	subject string
	logger  *zap.Logger
	newID   func() string
}

// NewNATSPublisher publishes to subject on the server at url. The connection
// is opened on the first Publish, so an unreachable server fails that call
// instead of the run.
func NewNATSPublisher(url, subject string, logger *zap.Logger) *NATSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []nats.Option{
		nats.Name("ebsconvert"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	p := NewNATSPublisherWithConn(nil, subject, logger)
	p.url = url
	p.dial = func() (Conn, error) {
		nc, err := nats.Connect(url, opts...)
		if err != nil {
			return nil, err
		}
		return nc, nil
	}
	return p
}

// NewNATSPublisherWithConn creates a publisher around an existing connection
func NewNATSPublisherWithConn(nc Conn, subject string, logger *zap.Logger) *NATSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSPublisher{nc: nc, subject: subject, logger: logger, newID: uuid.NewString}
}

// Publish sends message and waits for the server to acknowledge the flush.
// The returned id is generated locally; core NATS has no message ids.
func (p *NATSPublisher) Publish(ctx context.Context, subject, message string) (string, error) {
	nc, err := p.conn()
	if err != nil {
		return "", err
	}

	id := p.newID()
	msg := nats.NewMsg(p.subject)
	msg.Header.Set(HeaderMessageID, id)
	msg.Header.Set(HeaderSubject, subject)
	msg.Data = []byte(message)

	if err := nc.PublishMsg(msg); err != nil {
		return "", fmt.Errorf("error publishing to %s: %w", p.subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return "", fmt.Errorf("error flushing nats connection: %w", err)
	}

	p.logger.Debug("published to nats", zap.String("subject", p.subject), zap.String("message_id", id))
	return id, nil
}

func (p *NATSPublisher) conn() (Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc == nil && p.dial != nil {
		nc, err := p.dial()
		if err != nil {
			return nil, fmt.Errorf("error connecting to nats at %s: %w", p.url, err)
		}
		p.logger.Debug("connected to nats", zap.String("url", p.url))
		p.nc = nc
	}
	if p.nc == nil || p.nc.IsClosed() {
		return nil, fmt.Errorf("nats not connected")
	}
	return p.nc, nil
}

// Close drains the connection if one was opened
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc == nil || p.nc.IsClosed() {
		return nil
	}
	return p.nc.Drain()
}
