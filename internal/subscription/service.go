// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"time"

	"github.com/jordansekky/cereal/internal/platform/validate"
	"github.com/jordansekky/cereal/pkg/uuid"
)

// ChapterCursorSource is the narrow collaborator Service needs from the
// chapter domain to satisfy invariant iii on creation (spec.md §3): a new
// subscription's cursor defaults to the most-recent-by-created_at chapter
// of its book, rather than nil, so it does not retroactively dump history
// (spec.md testable scenario 6).
type ChapterCursorSource interface {
	MostRecentChapterCursor(ctx context.Context, bookID string) (chapterID string, createdAt time.Time, ok bool, err error)
}

// Service implements the business rules around Subscription, on top of
// [Repository] and a [ChapterCursorSource].
type Service struct {
	repo    Repository
	cursors ChapterCursorSource
}

// NewService constructs a [Service].
func NewService(repo Repository, cursors ChapterCursorSource) *Service {
	return &Service{repo: repo, cursors: cursors}
}

// CreateSubscription validates and persists a new Subscription.
//
// If the caller does not supply a cursor, it is initialized to the book's
// most-recent-by-created_at chapter (invariant iii); if the book has no
// chapters yet, the cursor stays nil and the subscription will receive
// everything as it is discovered.
func (s *Service) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.ChunkSize == 0 {
		sub.ChunkSize = DefaultChunkSize
	}

	v := &validate.Validator{}
	v.UUID("subscriberId", sub.SubscriberID)
	v.UUID("bookId", sub.BookID)
	v.Custom("chunkSize", sub.ChunkSize < 1, "chunkSize must be >= 1")
	if err := v.Err(); err != nil {
		return Subscription{}, err
	}

	if sub.LastDeliveredChapterID == nil {
		chapterID, createdAt, ok, err := s.cursors.MostRecentChapterCursor(ctx, sub.BookID)
		if err != nil {
			return Subscription{}, err
		}
		if ok {
			sub.LastDeliveredChapterID = &chapterID
			sub.LastDeliveredChapterCreatedAt = &createdAt
		}
	}

	sub.ID = uuid.NewV4()
	sub.CreatedAt = time.Now().UTC()
	sub.UpdatedAt = sub.CreatedAt
	return s.repo.CreateSubscription(ctx, sub)
}

// UpdateSubscription validates and persists changes to chunk_size. The
// cursor is never mutated through this path — only [Service.AdvanceCursor]
// (the Delivery worker) moves it, preserving monotonicity.
func (s *Service) UpdateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	v := &validate.Validator{}
	v.UUID("id", sub.ID)
	v.Custom("chunkSize", sub.ChunkSize < 1, "chunkSize must be >= 1")
	if err := v.Err(); err != nil {
		return Subscription{}, err
	}

	sub.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateSubscription(ctx, sub)
}

// GetSubscription returns a single Subscription by id.
func (s *Service) GetSubscription(ctx context.Context, id string) (Subscription, error) {
	return s.repo.GetSubscription(ctx, id)
}

// ListSubscriptions returns every Subscription matching filter.
func (s *Service) ListSubscriptions(ctx context.Context, filter Filter) ([]Subscription, error) {
	return s.repo.ListSubscriptions(ctx, filter)
}

// DeleteSubscription removes a Subscription by id.
func (s *Service) DeleteSubscription(ctx context.Context, id string) error {
	return s.repo.DeleteSubscription(ctx, id)
}

// AdvanceCursor is the Delivery worker's only write path (spec.md §4.E
// step 4): it moves the cursor to the last chapter of a delivered batch.
// It runs the pure monotonicity guard ([Subscription.AdvanceCursor])
// against the current row before writing, so a stale or out-of-order
// call from the caller is a no-op rather than a regression; the
// repository's own UPDATE additionally guards the same invariant in its
// WHERE clause, since two deliveries could race between this read and
// the write (spec.md §8 testable property 3: the cursor never retreats).
func (s *Service) AdvanceCursor(ctx context.Context, id string, chapterID string, chapterCreatedAt time.Time) error {
	current, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return err
	}
	// AdvanceCursor returns its receiver completely unchanged (same
	// LastDeliveredChapterCreatedAt pointer) when the guard declines to
	// move the cursor; a fresh pointer means it actually advanced.
	advanced := current.AdvanceCursor(chapterID, chapterCreatedAt)
	if advanced.LastDeliveredChapterCreatedAt == current.LastDeliveredChapterCreatedAt {
		return nil
	}
	return s.repo.AdvanceCursor(ctx, id, chapterID, chapterCreatedAt)
}
