// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/convert"
	"github.com/jordansekky/cereal/internal/dedup"
	"github.com/jordansekky/cereal/internal/notify"
	"github.com/jordansekky/cereal/internal/platform/sqlitetest"
	"github.com/jordansekky/cereal/internal/provider"
	"github.com/jordansekky/cereal/internal/subscriber"
	"github.com/jordansekky/cereal/internal/subscription"
)

// scriptedChapterProvider mocks a feed: every seeded item is returned by the
// next FetchNewChapters call and never again, regardless of the cursor
// value — the same contract Discovery relies on from a real provider, since
// its own cursor is a CreatedAt and feed items carry a PublishedAt that only
// a live feed's natural "published after last poll" ordering makes
// comparable (spec.md §8's "mock provider that returns scripted responses").
type scriptedChapterProvider struct {
	mu       sync.Mutex
	pending  []chapter.NewChapter
	returned []chapter.NewChapter
}

func (p *scriptedChapterProvider) FetchNewChapters(_ context.Context, bookID string, _ *time.Time) ([]chapter.NewChapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]chapter.NewChapter, 0, len(p.pending))
	rest := p.pending[:0]
	for _, c := range p.pending {
		if c.BookID == bookID {
			out = append(out, c)
			p.returned = append(p.returned, c)
			continue
		}
		rest = append(rest, c)
	}
	p.pending = rest
	return out, nil
}

func (p *scriptedChapterProvider) seed(c chapter.NewChapter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, c)
}

// scriptedBodyProvider returns a fixed body for each chapter title, as
// scenario 2 of spec.md §8 requires.
type scriptedBodyProvider struct {
	mu     sync.Mutex
	bodies map[string][]byte
}

func (p *scriptedBodyProvider) FetchChapterBody(_ context.Context, c chapter.Chapter) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bodies[c.Title]
	if !ok {
		return nil, fmt.Errorf("scriptedBodyProvider: no body scripted for %q", c.Title)
	}
	return b, nil
}

func (p *scriptedBodyProvider) set(title string, body []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bodies == nil {
		p.bodies = make(map[string][]byte)
	}
	p.bodies[title] = body
}

// fakeDispatch implements [chapterDiscoverer] and [chapterBodyDispatcher]
// against the scripted providers above, standing in for [provider.Dispatch].
type fakeDispatch struct {
	newChapters *scriptedChapterProvider
	bodies      *scriptedBodyProvider
}

func (d *fakeDispatch) NewChapterProviderFor(book.Book) (provider.NewChapterProvider, error) {
	return d.newChapters, nil
}

func (d *fakeDispatch) ChapterBodyProviderFor(chapter.Chapter) (provider.ChapterBodyProvider, bool, error) {
	return d.bodies, true, nil
}

// installFakeEbookConvert drops a stub "ebook-convert" onto PATH that
// writes "EPUB-" followed by the input file's bytes to the output path,
// matching spec.md §8 scenario 3's "stub the external converter to return
// b"EPUB-" + html"" (grounded on internal/convert/calibre_test.go's same
// technique).
func installFakeEbookConvert(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ebook-convert stub is a POSIX shell script")
	}

	dir := t.TempDir()
	script := "#!/bin/sh\nprintf 'EPUB-' > \"$2\"\ncat \"$1\" >> \"$2\"\nexit 0\n"
	path := filepath.Join(dir, "ebook-convert")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// roundTripFunc adapts a function to http.RoundTripper, same technique as
// internal/notify/notify_test.go.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newOKResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}")), Header: make(http.Header)}
}

// capturingPushover records every message sent to it instead of calling
// the real Pushover API.
type capturingPushover struct {
	*notify.PushoverClient
	mu       sync.Mutex
	messages []string
}

func newCapturingPushover() *capturingPushover {
	c := &capturingPushover{PushoverClient: notify.NewPushoverClient("token")}
	capture := c
	c.SetHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var body map[string]string
		b, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(b, &body)
		capture.mu.Lock()
		capture.messages = append(capture.messages, body["message"])
		capture.mu.Unlock()
		return newOKResponse(), nil
	})})
	return c
}

// capturingMailgun records the subject of every email sent.
type capturingMailgun struct {
	*notify.MailgunClient
	mu       sync.Mutex
	subjects []string
}

func newCapturingMailgun() *capturingMailgun {
	c := &capturingMailgun{MailgunClient: notify.NewMailgunClient("key", "https://example.invalid/messages", "from@example.com")}
	capture := c
	c.SetHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if err := req.ParseMultipartForm(10 << 20); err != nil {
			return nil, err
		}
		capture.mu.Lock()
		capture.subjects = append(capture.subjects, req.FormValue("subject"))
		capture.mu.Unlock()
		return newOKResponse(), nil
	})})
	return c
}

// pipelineHarness wires every domain service against one in-memory SQLite
// database, the same stack cmd/api/main.go assembles in production.
type pipelineHarness struct {
	t        *testing.T
	ctx      context.Context
	books    *book.Service
	chapters *chapter.Service
	subs     *subscriber.Service
	subrip   *subscription.Service
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()
	db := sqlitetest.Open(t)

	bookSvc := book.NewService(book.NewSQLiteRepository(db))
	chapterSvc := chapter.NewService(chapter.NewSQLiteRepository(db))
	subscriberSvc := subscriber.NewService(subscriber.NewSQLiteRepository(db))
	subscriptionSvc := subscription.NewService(subscription.NewSQLiteRepository(db), chapterSvc)

	return &pipelineHarness{
		t: t, ctx: context.Background(),
		books: bookSvc, chapters: chapterSvc, subs: subscriberSvc, subrip: subscriptionSvc,
	}
}

/*
TestPipeline_EndToEnd reproduces spec.md §8's six literal end-to-end
scenarios against fake providers, a fake ebook-convert binary, and fake
HTTP transports for Mailgun/Pushover — no real network or store mock.
*/
func TestPipeline_EndToEnd(t *testing.T) {
	installFakeEbookConvert(t)
	h := newPipelineHarness(t)

	b, err := h.books.CreateBook(h.ctx, book.Book{Title: "Pact", Author: "Wildbow", Metadata: book.Metadata{Kind: book.MetadataPale}})
	require.NoError(t, err)

	chapterProvider := &scriptedChapterProvider{}
	bodyProvider := &scriptedBodyProvider{}
	dispatch := &fakeDispatch{newChapters: chapterProvider, bodies: bodyProvider}

	discovery := NewDiscovery(h.books, h.chapters, dispatch, dedup.New(nil, nil), discardLogger())
	hydration := NewHydration(h.chapters, dispatch, discardLogger())
	conversion := NewConversion(h.books, h.chapters, convert.NewConverter(t.TempDir()), discardLogger())

	email := "reader@example.com"
	sub, err := h.subs.CreateSubscriber(h.ctx, subscriber.Subscriber{Name: "Reader A", KindleEmail: &email})
	require.NoError(t, err)

	// Subscription created before any chapter exists: cursor defaults to
	// nil (invariant iii), matching scenario 4's starting state.
	subscriptionMail, err := h.subrip.CreateSubscription(h.ctx, subscription.Subscription{
		SubscriberID: sub.ID, BookID: b.ID, ChunkSize: 2,
	})
	require.NoError(t, err)
	assert.Nil(t, subscriptionMail.LastDeliveredChapterCreatedAt)

	mailgun := newCapturingMailgun()
	pushover := newCapturingPushover()
	delivery := NewDelivery(h.subs, h.subrip, h.books, h.chapters, conversion.converter, mailgun.MailgunClient, pushover.PushoverClient, discardLogger())

	// --- Scenario 1: fresh book, first discovery. ---
	pub1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pub2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	pub3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	chapterProvider.seed(chapter.NewChapter{BookID: b.ID, Title: "Chapter 1", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/1"}, PublishedAt: &pub1})
	chapterProvider.seed(chapter.NewChapter{BookID: b.ID, Title: "Chapter 2", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/2"}, PublishedAt: &pub2})
	chapterProvider.seed(chapter.NewChapter{BookID: b.ID, Title: "Chapter 3", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/3"}, PublishedAt: &pub3})

	discovery.runTick(h.ctx)

	shallow, err := h.chapters.ListChaptersShallow(h.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, shallow, 3)
	assert.Equal(t, []string{"Chapter 1", "Chapter 2", "Chapter 3"}, []string{shallow[0].Title, shallow[1].Title, shallow[2].Title})

	stubs, err := h.chapters.ChaptersAwaitingBody(h.ctx)
	require.NoError(t, err)
	assert.Len(t, stubs, 3)

	// --- Scenario 2: hydration. ---
	bodyProvider.set("Chapter 1", []byte("<p>body-1</p>"))
	bodyProvider.set("Chapter 2", []byte("<p>body-2</p>"))
	bodyProvider.set("Chapter 3", []byte("<p>body-3</p>"))
	hydration.runTick(h.ctx)

	withoutBody, err := h.chapters.ChaptersAwaitingBody(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, withoutBody)
	awaitingEPUB, err := h.chapters.ChaptersAwaitingEPUB(h.ctx)
	require.NoError(t, err)
	require.Len(t, awaitingEPUB, 3)
	for _, c := range awaitingEPUB {
		assert.Nil(t, c.EPUB)
	}

	// --- Scenario 3: conversion. ---
	conversion.runTick(h.ctx)

	awaitingEPUB, err = h.chapters.ChaptersAwaitingEPUB(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, awaitingEPUB)
	for _, sc := range shallow {
		c, err := h.chapters.GetChapter(h.ctx, sc.ID)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(c.EPUB), "EPUB-"))
	}

	// --- Scenario 4: delivery cursor, chunk_size=2. ---
	delivery.runTick(h.ctx)

	require.Len(t, mailgun.subjects, 1)
	assert.Equal(t, "Pact: Chapter 1 - Chapter 3", mailgun.subjects[0])

	got, err := h.subrip.GetSubscription(h.ctx, subscriptionMail.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastDeliveredChapterCreatedAt)
	thirdCreatedAt := *got.LastDeliveredChapterCreatedAt

	// Second immediate tick: no delivery (count < chunk_size after cursor).
	delivery.runTick(h.ctx)
	assert.Len(t, mailgun.subjects, 1)

	// --- Scenario 5: new chapter after cursor. ---
	time.Sleep(2 * time.Millisecond)
	pub4 := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	chapterProvider.seed(chapter.NewChapter{BookID: b.ID, Title: "Chapter 4", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/4"}, PublishedAt: &pub4})
	discovery.runTick(h.ctx)
	bodyProvider.set("Chapter 4", []byte("<p>body-4</p>"))
	hydration.runTick(h.ctx)
	conversion.runTick(h.ctx)
	delivery.runTick(h.ctx)
	assert.Len(t, mailgun.subjects, 1, "one chapter is below chunk_size=2, no delivery yet")

	time.Sleep(2 * time.Millisecond)
	pub5 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	chapterProvider.seed(chapter.NewChapter{BookID: b.ID, Title: "Chapter 5", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/5"}, PublishedAt: &pub5})
	discovery.runTick(h.ctx)
	bodyProvider.set("Chapter 5", []byte("<p>body-5</p>"))
	hydration.runTick(h.ctx)
	conversion.runTick(h.ctx)
	delivery.runTick(h.ctx)

	require.Len(t, mailgun.subjects, 2)
	assert.Equal(t, "Pact: Chapter 4 - Chapter 5", mailgun.subjects[1])

	got, err = h.subrip.GetSubscription(h.ctx, subscriptionMail.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastDeliveredChapterCreatedAt)
	assert.True(t, got.LastDeliveredChapterCreatedAt.After(thirdCreatedAt))

	// --- Scenario 6: subscription created after history exists. ---
	subscriberB, err := h.subs.CreateSubscriber(h.ctx, subscriber.Subscriber{Name: "Reader B", KindleEmail: &email})
	require.NoError(t, err)
	subB, err := h.subrip.CreateSubscription(h.ctx, subscription.Subscription{SubscriberID: subscriberB.ID, BookID: b.ID, ChunkSize: 2})
	require.NoError(t, err)
	require.NotNil(t, subB.LastDeliveredChapterCreatedAt)
	assert.Equal(t, got.LastDeliveredChapterCreatedAt.Unix(), subB.LastDeliveredChapterCreatedAt.Unix())

	delivery.runTick(h.ctx)
	// Subscriber B's cursor already covers chapters 1-5, so no further mail
	// is sent on its behalf.
	assert.Len(t, mailgun.subjects, 2)
}
