package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/bookstore/internal/domain/book"
	"github.com/xenking/bookstore/internal/domain/cart"
)

// --- Mock implementations ---

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

// --- Tests ---

type event struct {
	Type       string `json:"type"`
	Key        string `json:"key"`
	ItemCount  int    `json:"itemCount"`
	Total      string `json:"total"`
	OccurredAt string `json:"occurredAt"`
	Items      []struct {
		BookID   string `json:"bookId"`
		Title    string `json:"title"`
		Quantity int    `json:"quantity"`
		Price    string `json:"price"`
	} `json:"items"`
}

func TestPublisher_CartChanged(t *testing.T) {
	w := &mockWriter{}
	p := newPublisher(w, zaptest.NewLogger(t))
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	c := cart.Add(cart.Add(cart.Empty(), book.Book{ID: "OL1W", Title: "Dune", Price: decimal.RequireFromString("12.5")}),
		book.Book{ID: "OL1W", Title: "Dune", Price: decimal.RequireFromString("12.5")})

	p.CartChanged(context.Background(), "bookstore-cart:s1", c)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "bookstore-cart:s1", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var ev event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventCartUpdated, ev.Type)
	assert.Equal(t, "bookstore-cart:s1", ev.Key)
	assert.Equal(t, 2, ev.ItemCount)
	assert.Equal(t, "25.00", ev.Total)
	assert.Equal(t, "2026-03-01T12:00:00Z", ev.OccurredAt)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, "OL1W", ev.Items[0].BookID)
	assert.Equal(t, "Dune", ev.Items[0].Title)
	assert.Equal(t, 2, ev.Items[0].Quantity)
	assert.Equal(t, "12.50", ev.Items[0].Price)
}

func TestPublisher_EmptyCart(t *testing.T) {
	w := &mockWriter{}
	p := newPublisher(w, zaptest.NewLogger(t))

	p.CartChanged(context.Background(), "k", cart.Empty())

	require.Len(t, w.msgs, 1)
	var ev event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Empty(t, ev.Items)
	assert.Equal(t, "0.00", ev.Total)
}

func TestPublisher_WriteErrorIsSwallowed(t *testing.T) {
	w := &mockWriter{err: errors.New("leader not available")}
	p := newPublisher(w, zaptest.NewLogger(t))

	assert.NotPanics(t, func() {
		p.CartChanged(context.Background(), "k", cart.Empty())
	})
}

func TestPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, newPublisher(w, zaptest.NewLogger(t)).Close())
	assert.True(t, w.closed)
}
