package entity

import (
	"context"
	"time"
)

type NewsletterSubscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"` // subscribed, unsubscribed
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewsletterRepositoryInterface interface {
	Upsert(ctx context.Context, s *NewsletterSubscriber) error
	List(ctx context.Context, limit, offset int) ([]*NewsletterSubscriber, error)
}
