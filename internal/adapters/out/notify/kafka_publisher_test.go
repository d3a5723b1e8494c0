package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/adapters/out/notify"
	"orderflow/internal/core/ports"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func TestKafkaPublisher_Send(t *testing.T) {
	ctx := t.Context()
	producer := new(MockProducer)
	publisher := notify.NewKafkaPublisher(producer, "notifications")

	var written []kafka.Message
	producer.On("WriteMessages", ctx, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	err := publisher.Send(ctx, ports.Notification{
		Channel:     ports.ChannelWhatsApp,
		Recipient:   "+919800000001",
		TemplateKey: ports.TemplateOrderDelivered,
		Payload:     map[string]string{"orderNumber": "ORD-000007"},
	})

	require.NoError(t, err)
	producer.AssertExpectations(t)
	require.Len(t, written, 1)
	assert.Equal(t, "notifications", written[0].Topic)
	assert.Equal(t, []byte("+919800000001"), written[0].Key)

	var msg notify.Message
	require.NoError(t, json.Unmarshal(written[0].Value, &msg))
	assert.Equal(t, "whatsapp", msg.Channel)
	assert.Equal(t, ports.TemplateOrderDelivered, msg.TemplateKey)
	assert.Equal(t, "ORD-000007", msg.Payload["orderNumber"])
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestKafkaPublisher_SendError(t *testing.T) {
	ctx := t.Context()
	producer := new(MockProducer)
	producer.On("WriteMessages", ctx, mock.Anything).Return(assert.AnError).Once()

	err := notify.NewKafkaPublisher(producer, "notifications").Send(ctx, ports.Notification{
		Channel:     ports.ChannelSMS,
		Recipient:   "+919800000001",
		TemplateKey: ports.TemplateDeliveryOTP,
	})

	require.ErrorIs(t, err, assert.AnError)
}
