package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
)

const (
	KindConversion = "conversion"
	KindLeadAlert  = "lead_alert"
)

// ConversionPayload is a server-side conversion waiting to be sent to analytics.
type ConversionPayload struct {
	EventType     string `json:"event_type"`
	Value         int    `json:"value"`
	Currency      string `json:"currency"`
	CorrelationID string `json:"correlation_id"`
	LeadID        string `json:"lead_id"`
	Source        string `json:"source"`
	ClientID      string `json:"client_id,omitempty"` // GA client id from the _ga cookie, when the page sent it
}

// LeadAlertPayload is a hot lead the sales inbox should hear about.
type LeadAlertPayload struct {
	LeadID             string `json:"lead_id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Source             string `json:"source"`
	Budget             string `json:"budget"`
	Message            string `json:"message"`
	LeadScore          int    `json:"lead_score"`
	QualificationLevel string `json:"qualification_level"`
	Priority           string `json:"priority"`
	ZohoLeadID         string `json:"zoho_lead_id,omitempty"`
}

// LeadEvent is the envelope carried on q.lead_events.
type LeadEvent struct {
	Kind       string             `json:"kind"`
	OccurredAt time.Time          `json:"occurred_at"`
	Conversion *ConversionPayload `json:"conversion,omitempty"`
	LeadAlert  *LeadAlertPayload  `json:"lead_alert,omitempty"`
}

type LeadEventPublisher interface {
	PublishConversion(ctx context.Context, payload ConversionPayload) error
	PublishLeadAlert(ctx context.Context, payload LeadAlertPayload) error
}

// channelPublisher is the part of *amqp.Channel the producer needs.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishConversion(ctx context.Context, payload ConversionPayload) error {
	return p.publish(ctx, LeadEvent{Kind: KindConversion, OccurredAt: time.Now().UTC(), Conversion: &payload}, payload.CorrelationID)
}

func (p *RabbitMQProducer) PublishLeadAlert(ctx context.Context, payload LeadAlertPayload) error {
	return p.publish(ctx, LeadEvent{Kind: KindLeadAlert, OccurredAt: time.Now().UTC(), LeadAlert: &payload}, payload.LeadID)
}

func (p *RabbitMQProducer) publish(ctx context.Context, event LeadEvent, correlationID string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "queue: marshal event")
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			Type:          event.Kind,
			Body:          body,
			DeliveryMode:  amqp.Persistent,
		},
	)
	if err != nil {
		return eris.Wrapf(err, "queue: publish %s", event.Kind)
	}
	return nil
}
