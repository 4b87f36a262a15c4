package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// Subjects used for irrigation domain events.
const (
	SubjectFieldCreated        = "irrigation.field.created"
	SubjectRecommendationReady = "irrigation.recommendation.ready"
	SubjectScheduleConfirmed   = "irrigation.schedule.confirmed"
	SubjectBroadcast           = "irrigation.updates.broadcast"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the irrigation streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "IRRIGATION_FIELDS",
			Subjects:  []string{"irrigation.field.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "IRRIGATION_ADVICE",
			Subjects:  []string{"irrigation.recommendation.>", "irrigation.schedule.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    72 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try an update instead.
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishFieldCreated(ctx context.Context, field *domain.Field) error {
	data, err := json.Marshal(field)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectFieldCreated, data)
	return err
}

func (p *Publisher) PublishRecommendationReady(ctx context.Context, rec *domain.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectRecommendationReady+"."+rec.FieldID, data)
	return err
}

func (p *Publisher) PublishScheduleConfirmed(ctx context.Context, sch *domain.Schedule) error {
	data, err := json.Marshal(sch)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectScheduleConfirmed+"."+sch.FieldID, data)
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. the
// WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
