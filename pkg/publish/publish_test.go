package publish

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafka_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	k := NewKafkaWithProducer(producer, "storefront.orders")

	msg, err := NewMessage("order.materialized", "cs_1", map[string]string{"sessionId": "cs_1"})
	require.NoError(t, err)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Message
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		assert.Equal(t, msg.ID, got.ID)
		assert.Equal(t, "order.materialized", got.Type)
		assert.JSONEq(t, `{"sessionId":"cs_1"}`, string(got.Data))
		return nil
	})

	require.NoError(t, Send(context.Background(), k, msg))
	require.NoError(t, k.Close())
}

func TestKafka_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	k := NewKafkaWithProducer(producer, "storefront.orders")

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	msg, err := NewMessage("order.materialized", "cs_1", nil)
	require.NoError(t, err)

	err = Send(context.Background(), k, msg)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, k.Close())
}

func TestNewMessage(t *testing.T) {
	a, err := NewMessage("x", "k", 1)
	require.NoError(t, err)
	b, err := NewMessage("x", "k", 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "1", string(a.Data))
	assert.False(t, a.OccurredAt.IsZero())

	_, err = NewMessage("x", "k", make(chan int))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	p, err := Open(Config{Driver: "log"})
	require.NoError(t, err)
	assert.Equal(t, "log", p.Name())
	assert.NoError(t, p.Publish(context.Background(), Message{ID: "1"}))

	_, err = Open(Config{Driver: "nats"})
	assert.Error(t, err)
}
