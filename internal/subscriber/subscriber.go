// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package subscriber defines the Subscriber entity — a delivery target
// reachable by kindle email, pushover, or neither (spec.md §3).
package subscriber

import "time"

// Subscriber is a delivery target. At least one of KindleEmail or
// PushoverKey is expected to be set for delivery to have effect; neither
// being set is permitted but silences that subscriber (spec.md §3, §9).
type Subscriber struct {
	ID          string
	Name        string
	KindleEmail *string
	PushoverKey *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasDeliveryChannel reports whether s can receive anything at all.
func (s Subscriber) HasDeliveryChannel() bool {
	return s.KindleEmail != nil || s.PushoverKey != nil
}

// Filter narrows ListSubscribers. An empty Filter matches everything.
type Filter struct {
	ID *string
}
