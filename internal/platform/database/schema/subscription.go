// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SubscriptionTable represents the 'subscriptions' table.
type SubscriptionTable struct {
	Table                         string
	ID                            string
	SubscriberID                  string
	BookID                        string
	ChunkSize                     string
	LastDeliveredChapterID        string
	LastDeliveredChapterCreatedAt string
	CreatedAt                     string
	UpdatedAt                     string
}

// Subscription is the schema definition for subscriptions.
var Subscription = SubscriptionTable{
	Table:                         "subscriptions",
	ID:                            "id",
	SubscriberID:                  "subscriber_id",
	BookID:                        "book_id",
	ChunkSize:                     "chunk_size",
	LastDeliveredChapterID:        "last_delivered_chapter_id",
	LastDeliveredChapterCreatedAt: "last_delivered_chapter_created_at",
	CreatedAt:                     "created_at",
	UpdatedAt:                     "updated_at",
}

func (t SubscriptionTable) Columns() []string {
	return []string{
		t.ID, t.SubscriberID, t.BookID, t.ChunkSize,
		t.LastDeliveredChapterID, t.LastDeliveredChapterCreatedAt,
		t.CreatedAt, t.UpdatedAt,
	}
}
