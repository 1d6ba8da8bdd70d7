// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/convert"
	"github.com/jordansekky/cereal/internal/notify"
	"github.com/jordansekky/cereal/internal/subscriber"
	"github.com/jordansekky/cereal/internal/subscription"
)

// Delivery assembles and sends ready chapter batches to subscribers, then
// advances each subscription's cursor (spec.md §4.E) — concurrently
// across subscriptions, sequentially within one.
type Delivery struct {
	subscribers   *subscriber.Service
	subscriptions *subscription.Service
	books         *book.Service
	chapters      *chapter.Service
	converter     *convert.Converter
	mailgun       *notify.MailgunClient
	pushover      *notify.PushoverClient
	log           *slog.Logger
}

// NewDelivery constructs a [Delivery] task.
func NewDelivery(
	subscribers *subscriber.Service,
	subscriptions *subscription.Service,
	books *book.Service,
	chapters *chapter.Service,
	converter *convert.Converter,
	mailgun *notify.MailgunClient,
	pushover *notify.PushoverClient,
	log *slog.Logger,
) *Delivery {
	return &Delivery{
		subscribers: subscribers, subscriptions: subscriptions,
		books: books, chapters: chapters, converter: converter,
		mailgun: mailgun, pushover: pushover, log: log,
	}
}

// Task returns the supervised [Task] wrapping this worker's tick loop.
func (d *Delivery) Task() Task {
	return Task{Name: "delivery", Run: func(ctx context.Context) error {
		return tick(ctx, fastPipelinePeriod, d.log, "delivery", d.runTick)
	}}
}

// runTick walks every Subscriber -> Subscription, building and delivering
// ready batches concurrently across subscriptions (spec.md §4.E).
func (d *Delivery) runTick(ctx context.Context) {
	subscribers, err := d.subscribers.ListSubscribers(ctx, subscriber.Filter{})
	if err != nil {
		d.log.Error("delivery_list_subscribers_failed", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subscribers {
		subs, err := d.subscriptions.ListSubscriptions(ctx, subscription.Filter{SubscriberID: &sub.ID})
		if err != nil {
			d.log.Error("delivery_list_subscriptions_failed",
				slog.String("subscriber_id", sub.ID), slog.Any("error", err))
			continue
		}
		for _, s := range subs {
			wg.Add(1)
			go func(sub subscriber.Subscriber, s subscription.Subscription) {
				defer wg.Done()
				d.processSubscription(ctx, sub, s)
			}(sub, s)
		}
	}
	wg.Wait()
}

func (d *Delivery) processSubscription(ctx context.Context, sub subscriber.Subscriber, s subscription.Subscription) {
	log := d.log.With(slog.String("subscription_id", s.ID), slog.String("book_id", s.BookID))

	ready, err := d.chapters.ChaptersReadyForDelivery(ctx, s.BookID, s.LastDeliveredChapterCreatedAt)
	if err != nil {
		log.Error("delivery_list_ready_failed", slog.Any("error", err))
		return
	}
	if len(ready) < s.ChunkSize {
		return
	}

	b, err := d.books.GetBook(ctx, s.BookID)
	if err != nil {
		log.Error("delivery_book_lookup_failed", slog.Any("error", err))
		return
	}

	first, last := ready[0], ready[len(ready)-1]
	coverTitle := compositeCoverTitle(b.Title, first.Title, last.Title)

	// Step 1: push notification. Failure aborts before cursor advance so
	// the whole batch is retried next tick (spec.md §4.E).
	if sub.PushoverKey != nil {
		pushCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
		err := d.pushover.SendMessage(pushCtx, *sub.PushoverKey, pushMessage(b.Title, first.Title, last.Title))
		cancel()
		if err != nil {
			log.Error("delivery_pushover_failed", slog.Any("error", err))
			return
		}
	}

	// Step 2: assemble the multi-chapter EPUB, only if an email channel
	// is configured — otherwise there is nothing to attach.
	if sub.KindleEmail != nil {
		epub, err := d.converter.GenerateEPUB(ctx, convert.Request{
			InputExtension: "html",
			ChapterBody:    concatenateChapterBodies(ready),
			CoverTitle:     coverTitle,
			BookTitle:      b.Title,
			Author:         b.Author,
		})
		if err != nil {
			log.Error("delivery_conversion_failed", slog.Any("error", err))
			return
		}

		emailCtx, cancel := context.WithTimeout(ctx, outboundTimeout)
		err = d.mailgun.SendEPUBFile(emailCtx, epub, *sub.KindleEmail, coverTitle, coverTitle)
		cancel()
		if err != nil {
			log.Error("delivery_mailgun_failed", slog.Any("error", err))
			return
		}
	}

	// Step 4: advance the cursor, but only when at least one channel was
	// configured (Open Question #5 — a silenced subscriber leaves its
	// chapters queued rather than silently consuming them).
	if !sub.HasDeliveryChannel() {
		return
	}
	if err := d.subscriptions.AdvanceCursor(ctx, s.ID, last.ID, last.CreatedAt); err != nil {
		log.Error("delivery_cursor_advance_failed", slog.Any("error", err))
		return
	}
	log.Info("delivery_delivered_batch", slog.Int("count", len(ready)))
}

// compositeCoverTitle implements DESIGN.md Open Question #6: the
// single-chapter form when the first and last titles are equal (always so
// for a batch of one), otherwise a composite of the two titles.
func compositeCoverTitle(bookTitle, firstTitle, lastTitle string) string {
	if firstTitle == lastTitle {
		return fmt.Sprintf("%s: %s", bookTitle, firstTitle)
	}
	return fmt.Sprintf("%s: %s - %s", bookTitle, firstTitle, lastTitle)
}

// pushMessage matches the original source's two push notification shapes
// (original_source/src/tasks/delivery/mod.rs: "Delivered new chapter for
// {}: {}" / "Delivered new chapters for {}. {} through {}"), which spec.md
// §4.E's literal "Delivered new chapter …" text elides the book title from.
func pushMessage(bookTitle, firstTitle, lastTitle string) string {
	if firstTitle == lastTitle {
		return fmt.Sprintf("Delivered new chapter for %s: %s", bookTitle, firstTitle)
	}
	return fmt.Sprintf("Delivered new chapters for %s. %s through %s", bookTitle, firstTitle, lastTitle)
}

// concatenateChapterBodies builds the multi-chapter EPUB source: each
// chapter's html preceded by "<h1>{title}</h1>", in publication-order
// ascending (spec.md §4.E step 2).
func concatenateChapterBodies(chapters []chapter.Chapter) []byte {
	var b strings.Builder
	for _, c := range chapters {
		b.WriteString("<h1>")
		b.WriteString(c.Title)
		b.WriteString("</h1>")
		b.Write(c.HTML)
	}
	return []byte(b.String())
}
