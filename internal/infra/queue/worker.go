package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ConversionLogger delivers a server-side conversion to the analytics platform.
type ConversionLogger interface {
	LogServerConversion(ctx context.Context, payload ConversionPayload) error
}

type LeadAlertSender interface {
	SendLeadAlert(payload LeadAlertPayload) error
}

type Worker struct {
	Channel     *amqp.Channel
	Conversions ConversionLogger
	Alerts      LeadAlertSender
	Logger      *zap.Logger
}

func NewWorker(ch *amqp.Channel, conversions ConversionLogger, alerts LeadAlertSender, logger *zap.Logger) *Worker {
	return &Worker{
		Channel:     ch,
		Conversions: conversions,
		Alerts:      alerts,
		Logger:      logger,
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return eris.Wrap(err, "queue: consume")
	}

	w.Logger.Info("lead event worker listening", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return eris.New("queue: delivery channel closed")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	if err := w.HandleMessage(ctx, d.Body); err != nil {
		w.Logger.Error("lead event failed, dead-lettering",
			zap.String("correlation_id", d.CorrelationId),
			zap.Error(err),
		)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// HandleMessage decodes one envelope and routes it by kind.
func (w *Worker) HandleMessage(ctx context.Context, body []byte) error {
	var event LeadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return eris.Wrap(err, "queue: malformed event")
	}

	switch event.Kind {
	case KindConversion:
		if event.Conversion == nil {
			return eris.New("queue: conversion event without payload")
		}
		if w.Conversions == nil {
			w.Logger.Warn("conversion logger not configured, dropping event",
				zap.String("correlation_id", event.Conversion.CorrelationID))
			return nil
		}
		return w.Conversions.LogServerConversion(ctx, *event.Conversion)

	case KindLeadAlert:
		if event.LeadAlert == nil {
			return eris.New("queue: lead alert without payload")
		}
		if w.Alerts == nil {
			w.Logger.Warn("lead alert mailer not configured, dropping alert",
				zap.String("lead_id", event.LeadAlert.LeadID))
			return nil
		}
		return w.Alerts.SendLeadAlert(*event.LeadAlert)

	default:
		// unknown kinds are acked so they do not pile up in the DLQ
		w.Logger.Warn("unknown lead event kind", zap.String("kind", event.Kind))
		return nil
	}
}
