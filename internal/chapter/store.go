// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"time"
)

// Repository is the persistence boundary for Chapter. Its named query
// methods mirror the original source's ChapterClient (SPEC_FULL.md §12):
// each worker tick has a dedicated method rather than ad-hoc inline SQL.
type Repository interface {
	// CreateChapters inserts newChapters in a single transaction, all for
	// the same book. Used by Discovery (spec.md §4.B): on any per-row
	// failure the whole batch is rolled back.
	CreateChapters(ctx context.Context, newChapters []NewChapter) ([]Chapter, error)

	// UpdateChapter applies a partial update; nil fields are left unchanged.
	UpdateChapter(ctx context.Context, id string, html, epub []byte) (Chapter, error)

	GetChapter(ctx context.Context, id string) (Chapter, error)
	ListChaptersShallow(ctx context.Context, bookID string) ([]ShallowChapter, error)
	DeleteChapter(ctx context.Context, id string) error

	// MostRecentChapterByCreatedAt is Discovery's cursor query: the most
	// recently created chapter for a book, ordered by created_at (not
	// published_at), per spec.md §4.B.
	MostRecentChapterByCreatedAt(ctx context.Context, bookID string) (*Chapter, error)

	// ListChaptersWithoutBody is Hydration's source query (spec.md §4.C):
	// chapters with html IS NULL, ordered by coalesce(published_at,
	// created_at) descending.
	ListChaptersWithoutBody(ctx context.Context) ([]Chapter, error)

	// ListChaptersWithoutEPUB is Conversion's source query (spec.md §4.D):
	// chapters with html IS NOT NULL AND epub IS NULL, same ordering.
	ListChaptersWithoutEPUB(ctx context.Context) ([]Chapter, error)

	// ListChaptersWithEPUBSinceCursor is Delivery's source query (spec.md
	// §4.E): converted chapters for bookID newer than sinceCreatedAt
	// (nil means "since the beginning"), ordered by coalesce(published_at,
	// created_at) ascending.
	ListChaptersWithEPUBSinceCursor(ctx context.Context, bookID string, sinceCreatedAt *time.Time) ([]Chapter, error)
}
