// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/convert"
)

// Conversion assembles an EPUB for every hydrated chapter that does not
// yet have one, sequentially within a tick (spec.md §4.D).
type Conversion struct {
	books     *book.Service
	chapters  *chapter.Service
	converter *convert.Converter
	log       *slog.Logger
}

// NewConversion constructs a [Conversion] task.
func NewConversion(books *book.Service, chapters *chapter.Service, converter *convert.Converter, log *slog.Logger) *Conversion {
	return &Conversion{books: books, chapters: chapters, converter: converter, log: log}
}

// Task returns the supervised [Task] wrapping this worker's tick loop.
func (c *Conversion) Task() Task {
	return Task{Name: "conversion", Run: func(ctx context.Context) error {
		return tick(ctx, fastPipelinePeriod, c.log, "conversion", c.runTick)
	}}
}

func (c *Conversion) runTick(ctx context.Context) {
	chapters, err := c.chapters.ChaptersAwaitingEPUB(ctx)
	if err != nil {
		c.log.Error("conversion_list_failed", slog.Any("error", err))
		return
	}

	for _, ch := range chapters {
		c.processChapter(ctx, ch)
	}
}

func (c *Conversion) processChapter(ctx context.Context, ch chapter.Chapter) {
	log := c.log.With(slog.String("chapter_id", ch.ID), slog.String("title", ch.Title))

	b, err := c.books.GetBook(ctx, ch.BookID)
	if err != nil {
		log.Error("conversion_book_lookup_failed", slog.Any("error", err))
		return
	}

	epub, err := c.converter.GenerateEPUB(ctx, convert.Request{
		InputExtension: "html",
		ChapterBody:    ch.HTML,
		CoverTitle:     fmt.Sprintf("%s: %s", b.Title, ch.Title),
		BookTitle:      b.Title,
		Author:         b.Author,
	})
	if err != nil {
		log.Error("conversion_failed", slog.Any("error", err))
		return
	}

	if _, err := c.chapters.AttachEPUB(ctx, ch.ID, epub); err != nil {
		log.Error("conversion_attach_failed", slog.Any("error", err))
		return
	}
	log.Info("conversion_attached_epub")
}
