package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds the TCP connect and AMQP handshake when the
// caller's context carries no deadline.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends BookingEvents to QueueName.  It keeps one connection and
// channel open and re-dials lazily after the broker drops them.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// Publish marshals ev and publishes it as a persistent message.  Errors are
// returned so the caller can log them; a booking is never undone because an
// event could not be sent.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // survive broker restarts
			Timestamp:    time.Now().UTC(),
			Type:         ev.Type,
			MessageId:    fmt.Sprintf("%s:%d:%s", ev.Type, ev.BookingID, ev.Status),
			Body:         body,
		})
	if err != nil {
		p.drop(ch)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns the open channel, dialing if needed.  mu only guards the
// cached handles; the dial itself runs unlocked so one slow broker cannot
// queue every publisher behind it.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	p.reset()
	p.mu.Unlock()

	conn, ch, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		// Another publisher won the race; keep its connection.
		_ = ch.Close()
		_ = conn.Close()
		return p.ch, nil
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	timeout := DefaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout <= 0 {
			return nil, nil, fmt.Errorf("dial broker: %w", context.DeadlineExceeded)
		}
	}
	// DefaultDial sets the socket deadline for the handshake as well, so a
	// broker that accepts but never answers is cut off after timeout.
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// drop discards ch if it is still the cached channel.
func (p *Publisher) drop(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		p.reset()
	}
}

// reset closes the cached handles.  Caller holds mu.
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// declare makes sure the durable queue exists (idempotent).
func declare(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
