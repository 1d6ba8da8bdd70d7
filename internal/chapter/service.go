// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"time"

	"github.com/jordansekky/cereal/internal/platform/validate"
)

// Service implements the business rules around Chapter, on top of [Repository].
//
// It deliberately does not expose a generic "update any field" operation:
// the only mutations a Chapter ever undergoes after creation are Hydration
// attaching HTML and Conversion attaching EPUB (spec.md §3 invariant ii —
// epub is never set before html), so [Service.AttachBody] and
// [Service.AttachEPUB] are the only write paths besides creation.
type Service struct {
	repo Repository
}

// NewService constructs a [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateChapters validates and persists a batch of newly discovered
// chapters, all belonging to the same book (spec.md §4.B).
func (s *Service) CreateChapters(ctx context.Context, newChapters []NewChapter) ([]Chapter, error) {
	if len(newChapters) == 0 {
		return nil, nil
	}

	bookID := newChapters[0].BookID
	for _, nc := range newChapters {
		v := &validate.Validator{}
		v.Required("bookId", nc.BookID)
		v.Required("title", nc.Title)
		v.Custom("bookId", nc.BookID != bookID, "all chapters in a batch must share a book id")
		if err := v.Err(); err != nil {
			return nil, err
		}
	}

	return s.repo.CreateChapters(ctx, newChapters)
}

// AttachBody is Hydration's write path (spec.md §4.C): it sets html on a
// stub chapter and never touches epub.
func (s *Service) AttachBody(ctx context.Context, id string, html []byte) (Chapter, error) {
	return s.repo.UpdateChapter(ctx, id, html, nil)
}

// AttachEPUB is Conversion's write path (spec.md §4.D): it sets epub on a
// chapter that already has a body.
func (s *Service) AttachEPUB(ctx context.Context, id string, epub []byte) (Chapter, error) {
	return s.repo.UpdateChapter(ctx, id, nil, epub)
}

// GetChapter returns a single Chapter by id.
func (s *Service) GetChapter(ctx context.Context, id string) (Chapter, error) {
	return s.repo.GetChapter(ctx, id)
}

// ListChaptersShallow returns every chapter for a book, without body/epub bytes.
func (s *Service) ListChaptersShallow(ctx context.Context, bookID string) ([]ShallowChapter, error) {
	return s.repo.ListChaptersShallow(ctx, bookID)
}

// DeleteChapter removes a Chapter by id.
func (s *Service) DeleteChapter(ctx context.Context, id string) error {
	return s.repo.DeleteChapter(ctx, id)
}

// MostRecentChapterByCreatedAt is Discovery's dedup anchor (spec.md §4.B):
// providers are only asked for chapters newer than this one.
func (s *Service) MostRecentChapterByCreatedAt(ctx context.Context, bookID string) (*Chapter, error) {
	return s.repo.MostRecentChapterByCreatedAt(ctx, bookID)
}

// MostRecentChapterCursor adapts MostRecentChapterByCreatedAt to the
// subscription domain's ChapterCursorSource collaborator interface
// (spec.md §3 invariant iii).
func (s *Service) MostRecentChapterCursor(ctx context.Context, bookID string) (string, time.Time, bool, error) {
	c, err := s.repo.MostRecentChapterByCreatedAt(ctx, bookID)
	if err != nil {
		return "", time.Time{}, false, err
	}
	if c == nil {
		return "", time.Time{}, false, nil
	}
	return c.ID, c.CreatedAt, true, nil
}

// ChaptersAwaitingBody is Hydration's worklist (spec.md §4.C).
func (s *Service) ChaptersAwaitingBody(ctx context.Context) ([]Chapter, error) {
	return s.repo.ListChaptersWithoutBody(ctx)
}

// ChaptersAwaitingEPUB is Conversion's worklist (spec.md §4.D).
func (s *Service) ChaptersAwaitingEPUB(ctx context.Context) ([]Chapter, error) {
	return s.repo.ListChaptersWithoutEPUB(ctx)
}

// ChaptersReadyForDelivery is Delivery's worklist (spec.md §4.E): converted
// chapters for a subscription's book, newer than its cursor.
func (s *Service) ChaptersReadyForDelivery(ctx context.Context, bookID string, sinceCreatedAt *time.Time) ([]Chapter, error) {
	return s.repo.ListChaptersWithEPUBSinceCursor(ctx, bookID, sinceCreatedAt)
}
