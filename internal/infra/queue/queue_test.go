package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

// MockConversionLogger
type MockConversionLogger struct {
	mock.Mock
}

func (m *MockConversionLogger) LogServerConversion(ctx context.Context, payload ConversionPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockAlertSender
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendLeadAlert(payload LeadAlertPayload) error {
	args := m.Called(payload)
	return args.Error(0)
}

// TestPublishConversionEnvelope - persistent JSON envelope on the lead exchange
func TestPublishConversionEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQProducer{Ch: ch}

	err := p.PublishConversion(context.Background(), ConversionPayload{
		EventType:     "business_website_lead",
		Value:         8421,
		Currency:      "INR",
		CorrelationID: "req-1",
		LeadID:        "lead-1",
	})

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "req-1", ch.msg.CorrelationId)
	assert.Equal(t, KindConversion, ch.msg.Type)

	var event LeadEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, KindConversion, event.Kind)
	require.NotNil(t, event.Conversion)
	assert.Equal(t, 8421, event.Conversion.Value)
	assert.Nil(t, event.LeadAlert)
}

func TestPublishLeadAlertError(t *testing.T) {
	p := &RabbitMQProducer{Ch: &fakeChannel{err: errors.New("channel closed")}}

	err := p.PublishLeadAlert(context.Background(), LeadAlertPayload{LeadID: "lead-1"})

	assert.Error(t, err)
}

func TestWorkerRoutesConversion(t *testing.T) {
	conv := new(MockConversionLogger)
	alerts := new(MockAlertSender)
	w := NewWorker(nil, conv, alerts, zap.NewNop())

	conv.On("LogServerConversion", mock.Anything, mock.MatchedBy(func(p ConversionPayload) bool {
		return p.LeadID == "lead-1"
	})).Return(nil)

	body, _ := json.Marshal(LeadEvent{Kind: KindConversion, Conversion: &ConversionPayload{LeadID: "lead-1"}})
	require.NoError(t, w.HandleMessage(context.Background(), body))

	conv.AssertExpectations(t)
	alerts.AssertNotCalled(t, "SendLeadAlert", mock.Anything)
}

func TestWorkerRoutesLeadAlert(t *testing.T) {
	alerts := new(MockAlertSender)
	w := NewWorker(nil, nil, alerts, zap.NewNop())
	alerts.On("SendLeadAlert", mock.Anything).Return(errors.New("smtp down"))

	body, _ := json.Marshal(LeadEvent{Kind: KindLeadAlert, LeadAlert: &LeadAlertPayload{LeadID: "lead-1"}})

	// handler errors dead-letter the message
	assert.Error(t, w.HandleMessage(context.Background(), body))
}

func TestWorkerMalformedAndUnknown(t *testing.T) {
	w := NewWorker(nil, nil, nil, zap.NewNop())

	assert.Error(t, w.HandleMessage(context.Background(), []byte(`{not json`)))
	assert.Error(t, w.HandleMessage(context.Background(), []byte(`{"kind":"conversion"}`)))
	assert.NoError(t, w.HandleMessage(context.Background(), []byte(`{"kind":"mystery"}`)))
}
