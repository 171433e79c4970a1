package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sent struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	published  []sent
	deliveries chan amqp.Delivery
	err        error
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, sent{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

// acker records acknowledgements.
type acker struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
	done    chan struct{}
}

func (a *acker) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acked = append(a.acked, tag)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acker) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acker) Reject(tag uint64, requeue bool) error { return nil }

func TestClient_Publish(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch, exchange: DefaultExchange, queue: DefaultQueue, log: zap.NewNop()}

	require.NoError(t, c.Publish(context.Background(), "order.placed", []byte(`{"order_id":"000001"}`)))
	require.Len(t, ch.published, 1)
	assert.Equal(t, DefaultExchange, ch.published[0].exchange)
	assert.Equal(t, "order.placed", ch.published[0].key)
	assert.Equal(t, uint8(amqp.Persistent), ch.published[0].msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.published[0].msg.ContentType)

	ch.err = errors.New("channel closed")
	assert.Error(t, c.Publish(context.Background(), "order.placed", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Publish(ctx, "order.placed", nil), context.Canceled)
}

func TestClient_ConsumeAcksAndRequeuesOnce(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery)}
	c := &Client{channel: ch, queue: DefaultQueue, log: zap.NewNop()}
	a := &acker{done: make(chan struct{}, 3)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.ConsumeOrderEvents(ctx, func(msg amqp.Delivery) error {
		if string(msg.Body) == "bad" {
			return errors.New("cannot decode")
		}
		return nil
	}))

	ch.deliveries <- amqp.Delivery{Acknowledger: a, DeliveryTag: 1, Body: []byte("good")}
	ch.deliveries <- amqp.Delivery{Acknowledger: a, DeliveryTag: 2, Body: []byte("bad")}
	ch.deliveries <- amqp.Delivery{Acknowledger: a, DeliveryTag: 3, Body: []byte("bad"), Redelivered: true}

	for i := 0; i < 3; i++ {
		select {
		case <-a.done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for acknowledgements")
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Equal(t, []uint64{1}, a.acked)
	assert.Equal(t, []uint64{2, 3}, a.nacked)
	assert.Equal(t, []bool{true, false}, a.requeue)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: "amqp://localhost"}
	cfg.setDefaults()
	assert.Equal(t, DefaultExchange, cfg.Exchange)
	assert.Equal(t, DefaultQueue, cfg.Queue)
	assert.Equal(t, DefaultBindingKey, cfg.BindingKey)
}
