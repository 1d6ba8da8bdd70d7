// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jordansekky/cereal/internal/chapter"
)

// apparatusNewChapterProvider discovers chapters from forwarded Patreon
// emails, attaching the body inline at discovery time (spec.md §4.A) — it
// has no corresponding ChapterBodyProvider (spec.md §4.C).
type apparatusNewChapterProvider struct {
	store *ObjectStore
}

func (p *apparatusNewChapterProvider) FetchNewChapters(ctx context.Context, bookID string, cursor *time.Time) ([]chapter.NewChapter, error) {
	if p.store == nil {
		return nil, fmt.Errorf("provider: apparatus of change patreon requires an object store")
	}

	entries, err := p.store.ListSince(ctx, cursor)
	if err != nil {
		return nil, err
	}

	var chapters []chapter.NewChapter
	for _, entry := range entries {
		raw, err := p.store.Get(ctx, entry.Key)
		if err != nil {
			return nil, err
		}
		nc, ok, err := apparatusChapterFromEmail(raw, bookID, entry.LastModified)
		if err != nil {
			return nil, err
		}
		if ok {
			chapters = append(chapters, nc)
		}
	}
	return chapters, nil
}

func apparatusChapterFromEmail(raw []byte, bookID string, publishedAt time.Time) (chapter.NewChapter, bool, error) {
	email, err := parseEmail(raw)
	if err != nil {
		return chapter.NewChapter{}, false, err
	}
	if !subjectContains(email.Subject, "apparatus") {
		return chapter.NewChapter{}, false, nil
	}
	if strings.TrimSpace(email.HTML) == "" {
		return chapter.NewChapter{}, false, nil
	}

	title, ok := apparatusTitleFromSubject(email.Subject)
	if !ok {
		return chapter.NewChapter{}, false, fmt.Errorf("provider: failed to find chapter title in email subject %q", email.Subject)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(email.HTML))
	if err != nil {
		return chapter.NewChapter{}, false, fmt.Errorf("provider: parse apparatus of change email body: %w", err)
	}
	sel := doc.Find("td > div > span > div > div > div > div + div").First()
	if sel.Length() == 0 {
		return chapter.NewChapter{}, false, fmt.Errorf("provider: no matching body in apparatus of change email")
	}
	body, err := goquery.OuterHtml(sel)
	if err != nil {
		return chapter.NewChapter{}, false, fmt.Errorf("provider: render apparatus of change email body: %w", err)
	}

	published := publishedAt
	return chapter.NewChapter{
		BookID:      bookID,
		Title:       title,
		Metadata:    chapter.Metadata{Kind: chapter.MetadataApparatusOfChangePatreon},
		HTML:        []byte(body),
		PublishedAt: &published,
	}, true, nil
}

// apparatusTitleFromSubject extracts the quoted chapter title from a
// subject line and strips the redundant series prefix, mirroring the
// original source's split-on-quote-then-trim-prefix logic.
func apparatusTitleFromSubject(subject string) (string, bool) {
	parts := strings.Split(subject, `"`)
	if len(parts) < 2 {
		return "", false
	}
	return strings.TrimPrefix(parts[1], "Apparatus Of Change - "), true
}
