// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/provider"
)

// fastPipelinePeriod is the fixed tick period shared by Hydration,
// Conversion and Delivery (spec.md §4.C-E).
const fastPipelinePeriod = 10 * time.Second

// chapterBodyDispatcher is the narrow collaborator Hydration needs from
// [provider.Dispatch] — resolving a chapter's body-fetch provider. See
// [chapterDiscoverer] for why this is an interface rather than the
// concrete dispatcher.
type chapterBodyDispatcher interface {
	ChapterBodyProviderFor(c chapter.Chapter) (provider.ChapterBodyProvider, bool, error)
}

// Hydration fetches the HTML body for every stub chapter, sequentially
// within a tick (spec.md §4.C).
type Hydration struct {
	chapters *chapter.Service
	dispatch chapterBodyDispatcher
	log      *slog.Logger
}

// NewHydration constructs a [Hydration] task.
func NewHydration(chapters *chapter.Service, dispatch chapterBodyDispatcher, log *slog.Logger) *Hydration {
	return &Hydration{chapters: chapters, dispatch: dispatch, log: log}
}

// Task returns the supervised [Task] wrapping this worker's tick loop.
func (h *Hydration) Task() Task {
	return Task{Name: "hydration", Run: func(ctx context.Context) error {
		return tick(ctx, fastPipelinePeriod, h.log, "hydration", h.runTick)
	}}
}

func (h *Hydration) runTick(ctx context.Context) {
	chapters, err := h.chapters.ChaptersAwaitingBody(ctx)
	if err != nil {
		h.log.Error("hydration_list_failed", slog.Any("error", err))
		return
	}

	for _, c := range chapters {
		h.processChapter(ctx, c)
	}
}

func (h *Hydration) processChapter(ctx context.Context, c chapter.Chapter) {
	log := h.log.With(slog.String("chapter_id", c.ID), slog.String("title", c.Title))

	bodyProvider, ok, err := h.dispatch.ChapterBodyProviderFor(c)
	if err != nil {
		log.Error("hydration_dispatch_failed", slog.Any("error", err))
		return
	}
	if !ok {
		// Carries its body inline at discovery time (spec.md §4.C).
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
	html, err := bodyProvider.FetchChapterBody(fetchCtx, c)
	cancel()
	if err != nil {
		log.Error("hydration_fetch_failed", slog.Any("error", err))
		return
	}

	if _, err := h.chapters.AttachBody(ctx, c.ID, html); err != nil {
		log.Error("hydration_attach_failed", slog.Any("error", err))
		return
	}
	log.Info("hydration_attached_body")
}
