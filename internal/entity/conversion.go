package entity

import (
	"context"
	"errors"
)

var ErrConversionTagNotFound = errors.New("conversion tag not found")

// ConversionTag maps a conversion event type to a Google Ads conversion action.
type ConversionTag struct {
	EventType       string `json:"eventType"`
	ConversionID    string `json:"conversionId"`
	ConversionLabel string `json:"conversionLabel"`
	Active          bool   `json:"active"`
}

func (t *ConversionTag) SendTo() string {
	if t.ConversionLabel == "" {
		return t.ConversionID
	}
	return t.ConversionID + "/" + t.ConversionLabel
}

type ConversionTagRepositoryInterface interface {
	FindByEventType(ctx context.Context, eventType string) (*ConversionTag, error)
}
