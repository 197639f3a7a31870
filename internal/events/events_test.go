package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/catalog/internal/lib/sl"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func declared(t *testing.T) (*mockChannel, *AMQPPublisher) {
	ch := &mockChannel{}
	ch.On("ExchangeDeclare", "catalog.events", "topic", true, false, false, false, amqp.Table(nil)).Return(nil)
	p, err := NewAMQPPublisher(ch, "catalog.events")
	require.NoError(t, err)
	return ch, p
}

func TestNewAMQPPublisher_DeclareError(t *testing.T) {
	ch := &mockChannel{}
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	p, err := NewAMQPPublisher(ch, "catalog.events")
	assert.Nil(t, p)
	assert.ErrorContains(t, err, "events.NewAMQPPublisher")
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch, p := declared(t)

	evt := New(ItemCreated, map[string]string{"id": "42"})
	ch.On("Publish", "catalog.events", ItemCreated, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			got.Type == ItemCreated &&
			got.Payload["id"] == "42"
	})).Return(nil)

	require.NoError(t, p.Publish(context.Background(), evt))
	ch.AssertExpectations(t)
}

func TestAMQPPublisher_PublishErrors(t *testing.T) {
	t.Run("broker error", func(t *testing.T) {
		ch, p := declared(t)
		ch.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(amqp.ErrClosed)

		err := p.Publish(context.Background(), New(UserDeleted, nil))
		assert.ErrorIs(t, err, amqp.ErrClosed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch, p := declared(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.Publish(ctx, New(UserDeleted, nil))
		assert.ErrorIs(t, err, context.Canceled)
		ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unencodable payload", func(t *testing.T) {
		_, p := declared(t)

		err := p.Publish(context.Background(), New(ItemUpdated, make(chan int)))
		assert.ErrorContains(t, err, "events.Publish")
	})
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch, p := declared(t)
	ch.On("Close").Return(nil)

	require.NoError(t, p.Close())
	ch.AssertExpectations(t)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), New(ItemDeleted, "x")))
	assert.NoError(t, p.Close())
}

type failingPublisher struct {
	Noop
	calls int
}

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &failingPublisher{}

	assert.NotPanics(t, func() {
		Emit(context.Background(), p, sl.Discard(), New(ItemCreated, nil))
	})
	assert.Equal(t, 1, p.calls)
}
