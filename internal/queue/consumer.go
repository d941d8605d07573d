package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/immersive-venue-booking/internal/logger"
)

// Consumer reads QueueName and appends one line per event to
// <dir>/booking.log.  It is the only subscriber; notification delivery is not
// part of this service.
type Consumer struct {
	url string
	dir string
	log *logger.Logger
}

func NewConsumer(url, dir string, log *logger.Logger) *Consumer {
	return &Consumer{url: url, dir: dir, log: log}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer: dial failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer: set QoS failed", "error", err)
	}
	if _, err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.log.Error("booking consumer: handle message failed", "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends it to the ledger.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event without type or booking id")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLedgerLine(ev)); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// FormatLedgerLine renders an event as one human-readable line.
func FormatLedgerLine(ev BookingEvent) string {
	return fmt.Sprintf("[%s] %s | booking_id=%d | ref=%s | user_id=%d | slot_id=%d | venue_id=%d | experience_id=%d | when=%s %s | ticket=%s | seats=%d | total=%d cents | status=%s\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.BookingID, ev.Reference, ev.UserID, ev.SlotID,
		ev.VenueID, ev.ExperienceID, ev.Date, ev.Time, ev.TicketType, ev.Seats, ev.TotalCents, ev.Status)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
