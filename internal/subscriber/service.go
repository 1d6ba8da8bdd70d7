// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber

import (
	"context"
	"time"

	"github.com/jordansekky/cereal/internal/platform/validate"
	"github.com/jordansekky/cereal/pkg/uuid"
)

// Service implements the business rules around Subscriber, on top of [Repository].
type Service struct {
	repo Repository
}

// NewService constructs a [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSubscriber validates and persists a new Subscriber. Neither
// KindleEmail nor PushoverKey is required (spec.md §3): a subscriber with
// no channel configured is silenced at delivery time, not rejected here.
func (s *Service) CreateSubscriber(ctx context.Context, sub Subscriber) (Subscriber, error) {
	v := &validate.Validator{}
	v.Required("name", sub.Name)
	if err := v.Err(); err != nil {
		return Subscriber{}, err
	}

	sub.ID = uuid.NewV4()
	sub.CreatedAt = time.Now().UTC()
	sub.UpdatedAt = sub.CreatedAt
	return s.repo.CreateSubscriber(ctx, sub)
}

// UpdateSubscriber validates and persists changes to an existing Subscriber.
func (s *Service) UpdateSubscriber(ctx context.Context, sub Subscriber) (Subscriber, error) {
	v := &validate.Validator{}
	v.UUID("id", sub.ID)
	v.Required("name", sub.Name)
	if err := v.Err(); err != nil {
		return Subscriber{}, err
	}

	sub.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateSubscriber(ctx, sub)
}

// GetSubscriber returns a single Subscriber by id.
func (s *Service) GetSubscriber(ctx context.Context, id string) (Subscriber, error) {
	return s.repo.GetSubscriber(ctx, id)
}

// ListSubscribers returns every Subscriber matching filter.
func (s *Service) ListSubscribers(ctx context.Context, filter Filter) ([]Subscriber, error) {
	return s.repo.ListSubscribers(ctx, filter)
}

// DeleteSubscriber removes a Subscriber by id (cascades to its subscriptions).
func (s *Service) DeleteSubscriber(ctx context.Context, id string) error {
	return s.repo.DeleteSubscriber(ctx, id)
}
