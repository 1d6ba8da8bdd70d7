// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"time"
)

// Repository is the persistence boundary for Subscription.
type Repository interface {
	CreateSubscription(ctx context.Context, s Subscription) (Subscription, error)
	UpdateSubscription(ctx context.Context, s Subscription) (Subscription, error)
	GetSubscription(ctx context.Context, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, filter Filter) ([]Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// AdvanceCursor persists a cursor move (spec.md §4.E step 4). It is
	// the only mutation path the Delivery worker uses.
	AdvanceCursor(ctx context.Context, id string, chapterID string, chapterCreatedAt time.Time) error
}
