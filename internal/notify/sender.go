package notify

import (
	"context"
	"errors"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/kafka"
	"github.com/Domenick1991/aeronavigator/pkg/logger"
)

var ErrNoRecipient = errors.New("booking event has no email")

// Sender delivers booking confirmations. Delivery is a structured log entry;
// there is no mail transport.
type Sender struct {
	log logger.Logger
}

func NewSender(log logger.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Email == "" {
		return ErrNoRecipient
	}
	s.log.Info("booking confirmation sent",
		"to", event.Email,
		"booking_id", event.BookingID,
		"flight_id", event.FlightID,
		"seats", event.Seats,
		"total", domain.FormatPrice(event.TotalCostCents),
	)
	return nil
}
