package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// Subscriber consumes irrigation domain events via JetStream durable
// consumers. Used by the advisor worker.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	log  *slog.Logger
	subs []*nats.Subscription
}

func NewSubscriber(url string, log *slog.Logger) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, log: log}, nil
}

// SubscribeFieldsCreated delivers the ID of every newly created field.
func (s *Subscriber) SubscribeFieldsCreated(ctx context.Context, handler func(ctx context.Context, fieldID string) error) error {
	sub, err := s.js.Subscribe(SubjectFieldCreated, func(msg *nats.Msg) {
		var field domain.Field
		if err := json.Unmarshal(msg.Data, &field); err != nil {
			s.log.Error("malformed field event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, field.ID); err != nil {
			s.log.Error("field created handler failed", "field_id", field.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable("advisor-fields"), nats.ManualAck(), nats.MaxDeliver(3))
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeRecommendationsReady(ctx context.Context, handler func(ctx context.Context, rec *domain.Recommendation) error) error {
	sub, err := s.js.Subscribe(SubjectRecommendationReady+".>", func(msg *nats.Msg) {
		var rec domain.Recommendation
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			s.log.Error("malformed recommendation event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &rec); err != nil {
			s.log.Error("recommendation handler failed", "field_id", rec.FieldID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable("advisor-recommendations"), nats.ManualAck(), nats.MaxDeliver(3))
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeSchedulesConfirmed(ctx context.Context, handler func(ctx context.Context, schedule *domain.Schedule) error) error {
	sub, err := s.js.Subscribe(SubjectScheduleConfirmed+".>", func(msg *nats.Msg) {
		var sch domain.Schedule
		if err := json.Unmarshal(msg.Data, &sch); err != nil {
			s.log.Error("malformed schedule event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &sch); err != nil {
			s.log.Error("schedule handler failed", "field_id", sch.FieldID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable("advisor-schedules"), nats.ManualAck(), nats.MaxDeliver(3))
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes all consumers and drains the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
