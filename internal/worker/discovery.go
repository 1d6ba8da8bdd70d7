// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/dedup"
	"github.com/jordansekky/cereal/internal/provider"
)

// discoveryPeriod is the fixed tick period from spec.md §4.B.
const discoveryPeriod = 5 * time.Minute

// outboundTimeout bounds a single provider call (SPEC_FULL.md §14).
const outboundTimeout = 30 * time.Second

// chapterDiscoverer is the narrow collaborator Discovery needs from
// [provider.Dispatch] — resolving a book's chapter-listing provider.
// Accepting the interface rather than the concrete dispatcher lets tests
// substitute scripted providers instead of the real network-backed ones.
type chapterDiscoverer interface {
	NewChapterProviderFor(b book.Book) (provider.NewChapterProvider, error)
}

// Discovery polls every Book's provider for chapters newer than the book's
// most-recent-by-created_at chapter, and inserts them as one
// all-or-nothing batch per book (spec.md §4.B).
type Discovery struct {
	books    *book.Service
	chapters *chapter.Service
	dispatch chapterDiscoverer
	dedup    *dedup.Cache
	log      *slog.Logger
}

// NewDiscovery constructs a [Discovery] task.
func NewDiscovery(books *book.Service, chapters *chapter.Service, dispatch chapterDiscoverer, dedup *dedup.Cache, log *slog.Logger) *Discovery {
	return &Discovery{books: books, chapters: chapters, dispatch: dispatch, dedup: dedup, log: log}
}

// Task returns the supervised [Task] wrapping this worker's tick loop.
func (d *Discovery) Task() Task {
	return Task{Name: "discovery", Run: func(ctx context.Context) error {
		return tick(ctx, discoveryPeriod, d.log, "discovery", d.runTick)
	}}
}

// runTick enumerates all books and processes them concurrently (spec.md
// §4.B: "Books are processed concurrently"; per-book failures are isolated
// and do not affect other books).
func (d *Discovery) runTick(ctx context.Context) {
	books, err := d.books.ListBooks(ctx, book.Filter{})
	if err != nil {
		d.log.Error("discovery_list_books_failed", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	for _, b := range books {
		wg.Add(1)
		go func(b book.Book) {
			defer wg.Done()
			d.processBook(ctx, b)
		}(b)
	}
	wg.Wait()
}

func (d *Discovery) processBook(ctx context.Context, b book.Book) {
	log := d.log.With(slog.String("book_id", b.ID), slog.String("title", b.Title))

	newProvider, err := d.dispatch.NewChapterProviderFor(b)
	if err != nil {
		log.Error("discovery_no_provider", slog.Any("error", err))
		return
	}

	mostRecent, err := d.chapters.MostRecentChapterByCreatedAt(ctx, b.ID)
	if err != nil {
		log.Error("discovery_cursor_lookup_failed", slog.Any("error", err))
		return
	}
	var cursor *time.Time
	if mostRecent != nil {
		cursor = &mostRecent.CreatedAt
	}

	fetchCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	candidates, err := newProvider.FetchNewChapters(fetchCtx, b.ID, cursor)
	cancel()
	if err != nil {
		log.Error("discovery_fetch_failed", slog.Any("error", err))
		return
	}
	if len(candidates) == 0 {
		return
	}

	fresh := make([]chapter.NewChapter, 0, len(candidates))
	for _, c := range candidates {
		key, ok := dedupKey(c)
		if ok && d.dedup.SeenOrMark(ctx, key) {
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return
	}

	if _, err := d.chapters.CreateChapters(ctx, fresh); err != nil {
		log.Error("discovery_insert_failed", slog.Any("error", err), slog.Int("count", len(fresh)))
		return
	}
	log.Info("discovery_inserted_chapters", slog.Int("count", len(fresh)))
}

// dedupKey computes the idempotency key described in SPEC_FULL.md §13: a
// RoyalRoad chapter is keyed by book+chapter id, every other variant by
// its source URL (email-ingested providers carry no stable id besides the
// link they extracted it from).
func dedupKey(c chapter.NewChapter) (string, bool) {
	switch c.Metadata.Kind {
	case chapter.MetadataRoyalRoad:
		return fmt.Sprintf("royalroad:%s:%d", c.BookID, c.Metadata.RoyalRoadChapterID), true
	case chapter.MetadataPale, chapter.MetadataTheWanderingInnPatreon, chapter.MetadataApparatusOfChangePatreon:
		if c.Metadata.URL == "" {
			return "", false
		}
		return string(c.Metadata.Kind) + ":" + c.Metadata.URL, true
	default:
		return "", false
	}
}
