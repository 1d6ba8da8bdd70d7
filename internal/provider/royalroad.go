// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/jordansekky/cereal/internal/chapter"
)

// royalRoadNewChapterProvider discovers chapters via Royal Road's per-book
// syndication feed (spec.md §4.A).
type royalRoadNewChapterProvider struct {
	royalRoadBookID uint64
}

func (p *royalRoadNewChapterProvider) FetchNewChapters(ctx context.Context, bookID string, cursor *time.Time) ([]chapter.NewChapter, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(fmt.Sprintf("https://www.royalroad.com/syndication/%d", p.royalRoadBookID), ctx)
	if err != nil {
		return nil, fmt.Errorf("provider: royalroad feed: %w", err)
	}

	chapters := make([]chapter.NewChapter, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.PublishedParsed == nil {
			return nil, fmt.Errorf("provider: royalroad item %q has no publish date", item.Link)
		}
		published := item.PublishedParsed.UTC()
		if cursor != nil && !published.After(*cursor) {
			continue
		}

		chapterID, err := royalRoadChapterIDFromLink(item.Link)
		if err != nil {
			return nil, err
		}
		title, ok := royalRoadTitleFromItemTitle(item.Title)
		if !ok {
			return nil, fmt.Errorf("provider: royalroad item %q has no %q separator in title", item.Link, " - ")
		}

		chapters = append(chapters, chapter.NewChapter{
			BookID: bookID,
			Title:  title,
			Metadata: chapter.Metadata{
				Kind:               chapter.MetadataRoyalRoad,
				RoyalRoadBookID:    p.royalRoadBookID,
				RoyalRoadChapterID: chapterID,
			},
			PublishedAt: &published,
		})
	}
	return chapters, nil
}

func royalRoadTitleFromItemTitle(itemTitle string) (string, bool) {
	_, after, ok := strings.Cut(itemTitle, " - ")
	return after, ok
}

func royalRoadChapterIDFromLink(link string) (uint64, error) {
	segments := strings.Split(strings.TrimRight(link, "/"), "/")
	last := segments[len(segments)-1]
	id, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("provider: no valid royalroad chapter id in link %q: %w", link, err)
	}
	return id, nil
}

// royalRoadChapterBodyProvider fetches a chapter's rendered HTML body.
type royalRoadChapterBodyProvider struct {
	royalRoadChapterID uint64
}

func (p *royalRoadChapterBodyProvider) FetchChapterBody(ctx context.Context, _ chapter.Chapter) ([]byte, error) {
	link := fmt.Sprintf("https://www.royalroad.com/fiction/chapter/%d", p.royalRoadChapterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: fetch royalroad chapter body: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider: parse royalroad chapter body: %w", err)
	}

	sel := doc.Find("div.chapter-inner").First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("provider: failed to find body in %s", link)
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil, fmt.Errorf("provider: render royalroad chapter body: %w", err)
	}
	return []byte(html), nil
}
