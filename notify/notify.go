// Package notify carries the need-change feed between the API server and
// interested clients over NATS. The feed is advisory: basket correctness is
// still enforced by the server's checkout rejection, the feed only lets a
// client refresh before the supporter runs into the conflict.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// subjectPrefix is the subject namespace for need events; one subject per
// need name.
const subjectPrefix = "ufund.needs."

// EventType describes what happened to a need.
type EventType string

const (
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventDeleted    EventType = "deleted"
	EventCheckedOut EventType = "checked_out"
)

// NeedEvent is one catalog mutation.
type NeedEvent struct {
	Type EventType  `json:"type"`
	Need model.Need `json:"need"`
	At   time.Time  `json:"at"`
}

// Subject returns the NATS subject for events about the named need.
func Subject(name string) string {
	return subjectPrefix + name
}

// Publisher emits need events. Publish failures are logged, never
// propagated: the feed must not make catalog mutations fail.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher connects to the NATS server at url.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url, nats.Name("ufund-publisher"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Publisher{nc: nc, logger: logger}, nil
}

// Publish emits one event on the need's subject.
func (p *Publisher) Publish(event NeedEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("encode need event", "need", event.Need.Name, "error", err)
		return
	}
	if err := p.nc.Publish(Subject(event.Need.Name), data); err != nil {
		p.logger.Warn("publish need event", "need", event.Need.Name, "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("drain NATS connection", "error", err)
	}
}

// Subscriber receives need events for every need.
type Subscriber struct {
	nc     *nats.Conn
	sub    *nats.Subscription
	logger *slog.Logger
}

// NewSubscriber connects to the NATS server at url.
func NewSubscriber(url string, logger *slog.Logger) (*Subscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url, nats.Name("ufund-subscriber"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Subscriber{nc: nc, logger: logger}, nil
}

// Subscribe invokes handler for every need event until Close. Events that
// fail to decode are logged and skipped.
func (s *Subscriber) Subscribe(handler func(NeedEvent)) error {
	sub, err := s.nc.Subscribe(subjectPrefix+">", func(msg *nats.Msg) {
		var event NeedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			s.logger.Warn("decode need event", "subject", msg.Subject, "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("subscribe to need events: %w", err)
	}
	s.sub = sub
	return nil
}

// Close unsubscribes and closes the connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.logger.Warn("unsubscribe need events", "error", err)
		}
	}
	s.nc.Close()
}
