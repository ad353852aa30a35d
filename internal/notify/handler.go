package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
	"github.com/Domenick1991/aeronavigator/pkg/metrics"
	kafkaGo "github.com/segmentio/kafka-go"
)

type Notifier interface {
	Send(ctx context.Context, event kafka.BookingEvent) error
}

// Handler returns a consumer callback that turns booking_created events into
// confirmations. Undecodable messages, other event types and failed sends are
// logged and skipped so one bad message never stalls the consumer.
func Handler(sender Notifier, m *metrics.Metrics, log logger.Logger) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		start := time.Now()
		defer func() { m.ProcessingTime.Observe(time.Since(start).Seconds()) }()

		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			m.ErrorsCount.WithLabelValues("decode").Inc()
			log.Warn("skipping undecodable event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			return nil
		}
		m.EventsConsumed.WithLabelValues(event.Type).Inc()

		if event.Type != kafka.EventBookingCreated {
			log.Debug("ignoring event", "type", event.Type, "event_id", event.EventID)
			return nil
		}
		if err := sender.Send(ctx, event); err != nil {
			m.ErrorsCount.WithLabelValues("notify").Inc()
			log.Error("failed to send booking confirmation", "booking_id", event.BookingID, "error", err)
			return nil
		}
		m.NotificationsSent.Inc()
		return nil
	}
}
