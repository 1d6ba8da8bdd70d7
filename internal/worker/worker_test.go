// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/chapter"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestDedupKey_RoyalRoad keys by book+chapter id, the only variant with a
stable numeric chapter identifier.
*/
func TestDedupKey_RoyalRoad(t *testing.T) {
	c := chapter.NewChapter{
		BookID:   "book-1",
		Metadata: chapter.Metadata{Kind: chapter.MetadataRoyalRoad, RoyalRoadChapterID: 99},
	}
	key, ok := dedupKey(c)
	assert.True(t, ok)
	assert.Equal(t, "royalroad:book-1:99", key)
}

/*
TestDedupKey_URLKeyedVariants covers the email-ingested and Pale variants,
which carry no stable id besides the extracted source link.
*/
func TestDedupKey_URLKeyedVariants(t *testing.T) {
	tests := []struct {
		name string
		kind chapter.MetadataKind
	}{
		{"pale", chapter.MetadataPale},
		{"wandering_inn", chapter.MetadataTheWanderingInnPatreon},
		{"apparatus", chapter.MetadataApparatusOfChangePatreon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chapter.NewChapter{Metadata: chapter.Metadata{Kind: tt.kind, URL: "https://example.com/1"}}
			key, ok := dedupKey(c)
			assert.True(t, ok)
			assert.Equal(t, string(tt.kind)+":https://example.com/1", key)
		})
	}
}

/*
TestDedupKey_UnrecognizedOrEmptyURL leaves Daily Grind (no candidates ever
returned) and any URL-keyed variant missing its URL undeduped.
*/
func TestDedupKey_UnrecognizedOrEmptyURL(t *testing.T) {
	_, ok := dedupKey(chapter.NewChapter{Metadata: chapter.Metadata{Kind: chapter.MetadataTheDailyGrindPatreon}})
	assert.False(t, ok)

	_, ok = dedupKey(chapter.NewChapter{Metadata: chapter.Metadata{Kind: chapter.MetadataPale}})
	assert.False(t, ok)
}

/*
TestCompositeCoverTitle_SingleVsBatch implements DESIGN.md Open Question
#6: single form for one chapter, composite for a range.
*/
func TestCompositeCoverTitle_SingleVsBatch(t *testing.T) {
	assert.Equal(t, "Book: Ch 1", compositeCoverTitle("Book", "Ch 1", "Ch 1"))
	assert.Equal(t, "Book: Ch 1 - Ch 3", compositeCoverTitle("Book", "Ch 1", "Ch 3"))
}

/*
TestPushMessage_SingleVsBatch mirrors the two push notification shapes
from the original source's tasks/delivery/mod.rs.
*/
func TestPushMessage_SingleVsBatch(t *testing.T) {
	assert.Equal(t, "Delivered new chapter for Book: Ch 1", pushMessage("Book", "Ch 1", "Ch 1"))
	assert.Equal(t, "Delivered new chapters for Book. Ch 1 through Ch 3", pushMessage("Book", "Ch 1", "Ch 3"))
}

/*
TestConcatenateChapterBodies preserves order and wraps each chapter body
in an <h1> title heading.
*/
func TestConcatenateChapterBodies(t *testing.T) {
	chapters := []chapter.Chapter{
		{Title: "One", HTML: []byte("<p>a</p>")},
		{Title: "Two", HTML: []byte("<p>b</p>")},
	}
	got := concatenateChapterBodies(chapters)
	assert.Equal(t, "<h1>One</h1><p>a</p><h1>Two</h1><p>b</p>", string(got))
}

/*
TestTick_InvokesFnEveryPeriod confirms the ticker fires fn repeatedly
until ctx is cancelled.
*/
func TestTick_InvokesFnEveryPeriod(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- tick(ctx, 5*time.Millisecond, discardLogger(), "test", func(ctx context.Context) {
			calls.Add(1)
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

/*
TestTick_RecoversFromPanic ensures a panicking tick is logged and does not
crash the ticker loop or abort subsequent ticks.
*/
func TestTick_RecoversFromPanic(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- tick(ctx, 5*time.Millisecond, discardLogger(), "test", func(ctx context.Context) {
			calls.Add(1)
			panic("boom")
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
