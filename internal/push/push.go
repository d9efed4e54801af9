// Package push delivers best-effort notifications through the Expo push
// service. Delivery failures are logged and never surfaced to callers.
package push

import (
	"context"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"

	"github.com/veridian/gatepass/pkg/config"
	"github.com/veridian/gatepass/pkg/logger"
)

// Notification types drive client-side deep-linking; the values are part of
// the mobile app contract and must not change.
const (
	TypeBookingReminder = "BOOKING_REMINDER"
	TypeVisitorCheckin  = "VISITOR_CHECKIN"
	TypePackage         = "PACKAGE"
)

type Notification struct {
	Title    string
	Body     string
	Type     string
	EntityID string
}

func (n Notification) data() map[string]string {
	return map[string]string{
		"type":     n.Type,
		"entityId": n.EntityID,
	}
}

// Client is the slice of the Expo SDK the dispatcher needs.
type Client interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

type Dispatcher struct {
	client    Client
	batchSize int
}

func NewDispatcher(cfg config.PushConfig) *Dispatcher {
	d := &Dispatcher{batchSize: cfg.BatchSize}
	if d.batchSize <= 0 {
		d.batchSize = 100
	}
	if cfg.Enabled {
		d.client = expo.NewPushClient(nil)
	}
	return d
}

// NewDispatcherWithClient is used by tests and by callers that configure the
// Expo client themselves.
func NewDispatcherWithClient(client Client, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{client: client, batchSize: batchSize}
}

// SendOne delivers to a single recipient. An empty or malformed token is a
// silent no-op.
func (d *Dispatcher) SendOne(ctx context.Context, token string, n Notification) {
	d.SendBulk(ctx, []string{token}, n)
}

// SendBulk filters out malformed tokens, partitions the rest into provider
// batches, and sends the batches sequentially. A failed batch is logged and
// does not stop the remaining ones.
func (d *Dispatcher) SendBulk(ctx context.Context, tokens []string, n Notification) {
	if d.client == nil {
		logger.DebugContext(ctx, "Push disabled, dropping notification", "type", n.Type, "entity_id", n.EntityID)
		return
	}

	valid := make([]expo.ExponentPushToken, 0, len(tokens))
	for _, raw := range tokens {
		if raw == "" {
			continue
		}
		token, err := expo.NewExponentPushToken(raw)
		if err != nil {
			logger.WarnContext(ctx, "Skipping malformed push token", "error", err)
			continue
		}
		valid = append(valid, token)
	}
	if len(valid) == 0 {
		return
	}

	for start := 0; start < len(valid); start += d.batchSize {
		end := start + d.batchSize
		if end > len(valid) {
			end = len(valid)
		}

		response, err := d.client.Publish(&expo.PushMessage{
			To:       valid[start:end],
			Title:    n.Title,
			Body:     n.Body,
			Data:     n.data(),
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		if err != nil {
			logger.ErrorContext(ctx, "Push batch delivery failed",
				"error", err, "type", n.Type, "entity_id", n.EntityID, "recipients", end-start)
			continue
		}
		if err := response.ValidateResponse(); err != nil {
			logger.ErrorContext(ctx, "Push batch rejected by provider",
				"error", err, "type", n.Type, "entity_id", n.EntityID, "recipients", end-start)
		}
	}
}
