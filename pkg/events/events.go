package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/veridian/gatepass/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// Visitor lifecycle
	VisitorCreated    = "visitor.created"
	VisitorCheckedIn  = "visitor.checked_in"
	VisitorCheckedOut = "visitor.checked_out"
	VisitorReset      = "visitor.reset"

	// Package lifecycle
	PackageCreated = "package.created"
	PackagePicked  = "package.picked"

	// Reminder job
	ReminderSent = "reminder.sent"
)

// Event payloads
type VisitorCreatedEvent struct {
	VisitorID   string    `json:"visitor_id"`
	CommunityID string    `json:"community_id"`
	HostID      int64     `json:"host_id"`
	Name        string    `json:"name"`
	VisitorType string    `json:"visitor_type"`
	VisitDate   time.Time `json:"visit_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type VisitorTransitionEvent struct {
	VisitorID   string    `json:"visitor_id"`
	CommunityID string    `json:"community_id"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

type PackageEvent struct {
	PackageID   int64     `json:"package_id"`
	CommunityID string    `json:"community_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

type ReminderSentEvent struct {
	BookingID int64     `json:"booking_id"`
	StartsAt  time.Time `json:"starts_at"`
	SentAt    time.Time `json:"sent_at"`
}
