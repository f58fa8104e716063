package monitor

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/store"
)

// RunEvent is published after every analysis cycle.
type RunEvent struct {
	Run       store.Run `json:"run"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers run events to interested subscribers.
type Publisher interface {
	Publish(event RunEvent) error
	Close() error
}

// NoopPublisher drops events (default when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(RunEvent) error { return nil }
func (NoopPublisher) Close() error           { return nil }

// NATSPublisher publishes run events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and publishes to the given subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.MonitorError("nats", err).WithContext("url", url)
	}
	slog.Info("NATS publisher connected", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends the event as JSON.
func (p *NATSPublisher) Publish(event RunEvent) error {
	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return errors.MonitorError("nats", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.MonitorError("nats", err).WithContext("subject", p.subject)
	}
	slog.Debug("Published run event",
		"run_id", event.Run.ID, "fs", event.Run.FS, "trigger", event.Trigger)
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
