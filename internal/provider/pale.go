// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/jordansekky/cereal/internal/chapter"
)

const paleFeedURL = "https://palewebserial.wordpress.com/feed/"

// paleNewChapterProvider discovers chapters via Pale's WordPress RSS feed
// (spec.md §4.A).
type paleNewChapterProvider struct{}

func (p *paleNewChapterProvider) FetchNewChapters(ctx context.Context, bookID string, cursor *time.Time) ([]chapter.NewChapter, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(paleFeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("provider: pale feed: %w", err)
	}

	chapters := make([]chapter.NewChapter, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.PublishedParsed == nil {
			return nil, fmt.Errorf("provider: pale item %q has no publish date", item.Link)
		}
		published := item.PublishedParsed.UTC()
		if cursor != nil && !published.After(*cursor) {
			continue
		}
		if item.Link == "" {
			return nil, fmt.Errorf("provider: pale item %q has no link", item.Title)
		}

		chapters = append(chapters, chapter.NewChapter{
			BookID: bookID,
			Title:  item.Title,
			Metadata: chapter.Metadata{
				Kind: chapter.MetadataPale,
				URL:  item.Link,
			},
			PublishedAt: &published,
		})
	}
	return chapters, nil
}

// paleChapterBodyProvider fetches and cleans a Pale chapter's HTML body.
type paleChapterBodyProvider struct {
	url string
}

func (p *paleChapterBodyProvider) FetchChapterBody(ctx context.Context, _ chapter.Chapter) ([]byte, error) {
	body, err := fetchEntryContentChildren(ctx, p.url, true)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("provider: failed to find chapter body at %s", p.url)
	}
	return []byte(body), nil
}

// fetchEntryContentChildren GETs url and concatenates the rendered HTML of
// div.entry-content's direct children, excluding navigation boilerplate
// (spec.md §4.A: Pale and Wandering Inn share this exact body-extraction
// rule, differing only in whether #jp-post-flair is also excluded).
func fetchEntryContentChildren(ctx context.Context, url string, excludeFlair bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("provider: parse %s: %w", url, err)
	}

	var parts []string
	doc.Find("div.entry-content").First().Children().Each(func(_ int, s *goquery.Selection) {
		if excludeFlair {
			if id, ok := s.Attr("id"); ok && id == "jp-post-flair" {
				return
			}
		}
		text := s.Text()
		if strings.Contains(text, "Next Chapter") || strings.Contains(text, "Previous Chapter") {
			return
		}
		html, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		parts = append(parts, html)
	})
	return strings.Join(parts, "\n"), nil
}
