// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package provider implements the per-source content provider abstractions
// (spec.md §4.A): polymorphic discovery and body-fetch adapters dispatched
// on a closed set of metadata variants, modeled as a dispatch function
// rather than an open plugin mechanism (spec.md §9).
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
)

// NewChapterProvider lists candidate chapters for a book that are believed
// newer than cursor. Implementations must not assume exact-once: the
// Discovery worker tolerates and filters duplicates (spec.md §4.B).
type NewChapterProvider interface {
	FetchNewChapters(ctx context.Context, bookID string, cursor *time.Time) ([]chapter.NewChapter, error)
}

// ChapterBodyProvider fetches the body bytes for a single chapter.
type ChapterBodyProvider interface {
	FetchChapterBody(ctx context.Context, c chapter.Chapter) ([]byte, error)
}

// Dispatch resolves the providers available for the pipeline, configured
// once at startup from the process environment (spec.md §11).
type Dispatch struct {
	objectStore *ObjectStore
}

// NewDispatch constructs a [Dispatch]. objectStore may be nil when no S3
// bucket is configured — in that case the email-ingested providers return
// an error if ever invoked, which Discovery logs and skips per-book
// (spec.md §4.B "per-book failures do not affect other books").
func NewDispatch(objectStore *ObjectStore) *Dispatch {
	return &Dispatch{objectStore: objectStore}
}

// NewChapterProviderFor dispatches on a book's metadata variant (spec.md §9:
// "model as a closed set of variants with a dispatch function").
func (d *Dispatch) NewChapterProviderFor(b book.Book) (NewChapterProvider, error) {
	switch b.Metadata.Kind {
	case book.MetadataRoyalRoad:
		return &royalRoadNewChapterProvider{royalRoadBookID: b.Metadata.RoyalRoadBookID}, nil
	case book.MetadataPale:
		return &paleNewChapterProvider{}, nil
	case book.MetadataTheWanderingInnPatreon:
		return &wanderingInnNewChapterProvider{store: d.objectStore}, nil
	case book.MetadataApparatusOfChangePatreon:
		return &apparatusNewChapterProvider{store: d.objectStore}, nil
	case book.MetadataTheDailyGrindPatreon:
		return &dailyGrindNewChapterProvider{}, nil
	default:
		return nil, fmt.Errorf("provider: no NewChapterProvider for metadata kind %q", b.Metadata.Kind)
	}
}

// ChapterBodyProviderFor dispatches on a chapter's metadata variant.
// Variants whose chapters carry their body inline at discovery time
// (Apparatus of Change, Daily Grind) have no body provider: ok is false
// and Hydration skips them (spec.md §4.C).
func (d *Dispatch) ChapterBodyProviderFor(c chapter.Chapter) (p ChapterBodyProvider, ok bool, err error) {
	switch c.Metadata.Kind {
	case chapter.MetadataRoyalRoad:
		return &royalRoadChapterBodyProvider{royalRoadChapterID: c.Metadata.RoyalRoadChapterID}, true, nil
	case chapter.MetadataPale:
		return &paleChapterBodyProvider{url: c.Metadata.URL}, true, nil
	case chapter.MetadataTheWanderingInnPatreon:
		return &wanderingInnChapterBodyProvider{url: c.Metadata.URL, password: c.Metadata.Password}, true, nil
	case chapter.MetadataApparatusOfChangePatreon, chapter.MetadataTheDailyGrindPatreon:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("provider: unrecognized chapter metadata kind %q", c.Metadata.Kind)
	}
}
