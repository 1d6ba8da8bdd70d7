// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber

import "context"

// Repository is the persistence boundary for Subscriber.
type Repository interface {
	CreateSubscriber(ctx context.Context, s Subscriber) (Subscriber, error)
	UpdateSubscriber(ctx context.Context, s Subscriber) (Subscriber, error)
	GetSubscriber(ctx context.Context, id string) (Subscriber, error)
	ListSubscribers(ctx context.Context, filter Filter) ([]Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error
}
