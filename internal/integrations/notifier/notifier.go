// Package notifier fans booking status changes out to real-time subscribers
// over Redis pub/sub. Publishing is fire-and-forget: the engine's contract
// ends once the durable write succeeds, so publish failures are logged and
// swallowed.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
)

// Notifier publishes booking events.
type Notifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// New constructs a notifier. A nil client disables publishing entirely.
func New(client *redis.Client, channel string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "booking_events"
	}
	return &Notifier{client: client, channel: channel, logger: logger}
}

// PublishStatus announces a booking's new status. Errors never propagate.
func (n *Notifier) PublishStatus(ctx context.Context, bookingID string, status models.BookingStatus) {
	if n.client == nil {
		return
	}

	event := models.BookingEvent{BookingID: bookingID, Status: status, At: time.Now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("booking_event.marshal_failed", zap.String("booking_id", bookingID), zap.Error(err))
		return
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Warn("booking_event.publish_failed",
			zap.String("booking_id", bookingID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
