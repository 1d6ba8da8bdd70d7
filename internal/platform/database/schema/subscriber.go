// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SubscriberTable represents the 'subscribers' table.
type SubscriberTable struct {
	Table       string
	ID          string
	Name        string
	KindleEmail string
	PushoverKey string
	CreatedAt   string
	UpdatedAt   string
}

// Subscriber is the schema definition for subscribers.
var Subscriber = SubscriberTable{
	Table:       "subscribers",
	ID:          "id",
	Name:        "name",
	KindleEmail: "kindle_email",
	PushoverKey: "pushover_key",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

func (t SubscriberTable) Columns() []string {
	return []string{t.ID, t.Name, t.KindleEmail, t.PushoverKey, t.CreatedAt, t.UpdatedAt}
}
