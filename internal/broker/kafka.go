// Package broker publishes cart events to Kafka.
package broker

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/xenking/bookstore/internal/cartstore"
	"github.com/xenking/bookstore/internal/domain/cart"
)

// EventCartUpdated is the type of every published event.
const EventCartUpdated = "cart.updated"

// DefaultTopic receives cart events when no topic is configured.
const DefaultTopic = "bookstore.cart-events"

var _ cartstore.Observer = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes a cart.updated event for every persisted cart change.
// Messages are keyed by cart key so one cart's events stay ordered.
type Publisher struct {
	writer messageWriter
	lg     *zap.Logger
	now    func() time.Time
}

// NewPublisher returns a Publisher writing to topic on brokers. Writes are
// asynchronous; delivery failures are logged.
func NewPublisher(brokers []string, topic string, lg *zap.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	lg = lg.Named("broker")
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				lg.Error("Failed to deliver cart events", zap.Int("count", len(msgs)), zap.Error(err))
			}
		},
	}
	return newPublisher(w, lg)
}

func newPublisher(w messageWriter, lg *zap.Logger) *Publisher {
	return &Publisher{writer: w, lg: lg, now: time.Now}
}

// CartChanged implements cartstore.Observer. Failures are logged and never
// propagate to the mutation.
func (p *Publisher) CartChanged(ctx context.Context, key string, c cart.Cart) {
	now := p.now()
	msg := kafka.Message{
		Key:   []byte(key),
		Value: encodeEvent(key, c, now),
		Time:  now,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.lg.Error("Failed to publish cart event", zap.String("cart", key), zap.Error(err))
	}
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, "close writer")
	}
	return nil
}

func encodeEvent(key string, c cart.Cart, at time.Time) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(EventCartUpdated) })
		e.Field("key", func(e *jx.Encoder) { e.Str(key) })
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(cart.ItemCount(c)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(c.Total.StringFixed(2)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range c.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("bookId", func(e *jx.Encoder) { e.Str(it.Book.ID) })
						e.Field("title", func(e *jx.Encoder) { e.Str(it.Book.Title) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("price", func(e *jx.Encoder) { e.Str(it.Book.Price.StringFixed(2)) })
					})
				}
			})
		})
		e.Field("occurredAt", func(e *jx.Encoder) { e.Str(at.UTC().Format(time.RFC3339Nano)) })
	})
	return e.Bytes()
}
