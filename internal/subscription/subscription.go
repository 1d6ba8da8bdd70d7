// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package subscription defines the Subscription entity — the link between
// a Subscriber and a Book, carrying delivery preferences and the delivery
// cursor (spec.md §3).
package subscription

import "time"

// Subscription links a Subscriber to a Book.
//
// Invariants (spec.md §3): (i) ChunkSize >= 1; (ii) if
// LastDeliveredChapterID is set, the referenced chapter belongs to BookID
// and LastDeliveredChapterCreatedAt equals that chapter's CreatedAt; (iii)
// at creation, an unset cursor is initialized to the most-recent-by-
// created_at chapter of the book, so new subscriptions do not retroactively
// dump history.
type Subscription struct {
	ID                            string
	SubscriberID                  string
	BookID                        string
	ChunkSize                     int
	LastDeliveredChapterID        *string
	LastDeliveredChapterCreatedAt *time.Time
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

// DefaultChunkSize is used when the caller does not specify one (spec.md §3).
const DefaultChunkSize = 1

// Filter narrows ListSubscriptions. An empty Filter matches everything.
type Filter struct {
	ID           *string
	SubscriberID *string
	BookID       *string
}

// AdvanceCursor returns a copy of s with its cursor moved to (chapterID,
// chapterCreatedAt) — the chapter with the greatest ordering key in a
// delivered batch (spec.md §4.E step 4). The cursor is monotone: advancing
// to a timestamp no later than the current cursor is a no-op, preserving
// the cursor's "non-decreasing" contract (spec.md testable scenario 3).
func (s Subscription) AdvanceCursor(chapterID string, chapterCreatedAt time.Time) Subscription {
	if s.LastDeliveredChapterCreatedAt != nil && !chapterCreatedAt.After(*s.LastDeliveredChapterCreatedAt) {
		return s
	}
	id := chapterID
	createdAt := chapterCreatedAt
	s.LastDeliveredChapterID = &id
	s.LastDeliveredChapterCreatedAt = &createdAt
	return s
}
