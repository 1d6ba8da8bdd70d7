// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jordansekky/cereal/internal/chapter"
)

const wanderingInnUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/110.0"

// wanderingInnNewChapterProvider discovers chapters from forwarded Patreon
// emails landing in the configured object bucket (spec.md §4.A).
type wanderingInnNewChapterProvider struct {
	store *ObjectStore
}

func (p *wanderingInnNewChapterProvider) FetchNewChapters(ctx context.Context, bookID string, cursor *time.Time) ([]chapter.NewChapter, error) {
	if p.store == nil {
		return nil, fmt.Errorf("provider: wandering inn patreon requires an object store")
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
		found, err := wanderingInnChaptersFromEmail(raw, bookID, entry.LastModified)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, found...)
	}
	return chapters, nil
}

func wanderingInnChaptersFromEmail(raw []byte, bookID string, publishedAt time.Time) ([]chapter.NewChapter, error) {
	email, err := parseEmail(raw)
	if err != nil {
		return nil, err
	}
	if !subjectContains(email.Subject, "pirateaba") {
		return nil, nil
	}
	if strings.TrimSpace(email.HTML) == "" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(email.HTML))
	if err != nil {
		return nil, fmt.Errorf("provider: parse wandering inn email body: %w", err)
	}

	password := wanderingInnPasswordFromParagraphs(doc)

	var chapters []chapter.NewChapter
	doc.Find("div > p a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		title, ok := wanderingInnTitleFromLink(href)
		if !ok {
			return
		}
		published := publishedAt
		chapters = append(chapters, chapter.NewChapter{
			BookID: bookID,
			Title:  title,
			Metadata: chapter.Metadata{
				Kind:     chapter.MetadataTheWanderingInnPatreon,
				URL:      href,
				Password: password,
			},
			PublishedAt: &published,
		})
	})
	return chapters, nil
}

// wanderingInnPasswordFromParagraphs replicates the original source's
// two-strategy extraction (spec.md §4.A): first, the single paragraph
// mentioning "password" whose next sibling element holds the value;
// failing that (zero or more than one match), a flat scan of paragraph
// text taking the token immediately after the word "password".
func wanderingInnPasswordFromParagraphs(doc *goquery.Document) *string {
	paragraphs := doc.Find("div > p")

	var candidates []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if !strings.Contains(strings.ToLower(p.Text()), "password") {
			return
		}
		sibling := p.Next()
		if sibling.Length() == 0 {
			return
		}
		candidates = append(candidates, sibling.Text())
	})
	if len(candidates) == 1 {
		return &candidates[0]
	}

	var words []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		words = append(words, strings.Fields(p.Text())...)
	})
	for i, w := range words {
		if strings.Contains(strings.ToLower(w), "password") && i+1 < len(words) {
			found := words[i+1]
			return &found
		}
	}
	return nil
}

func wanderingInnTitleFromLink(href string) (string, bool) {
	u, err := url.Parse(href)
	path := href
	if err == nil {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if strings.TrimSpace(segments[i]) != "" {
			return segments[i], true
		}
	}
	return "", false
}

// wanderingInnChapterBodyProvider fetches a chapter's body, submitting the
// post password (if known) through a dedicated cookie jar before the GET,
// matching wanderinginn.com's WordPress password-protected-post flow
// (spec.md §4.A).
type wanderingInnChapterBodyProvider struct {
	url      string
	password *string
}

func (p *wanderingInnChapterBodyProvider) FetchChapterBody(ctx context.Context, _ chapter.Chapter) ([]byte, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar}

	if p.password != nil {
		form := url.Values{"post_password": {*p.password}, "Submit": {"Enter"}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			"https://wanderinginn.com/wp-login.php?action=postpass", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", wanderingInnUserAgent)
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("provider: submit wandering inn password: %w", err)
		}
		resp.Body.Close()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", wanderingInnUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: fetch wandering inn chapter body: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider: parse wandering inn chapter body: %w", err)
	}

	var parts []string
	doc.Find("div.entry-content").First().Children().Each(func(_ int, s *goquery.Selection) {
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
	body := strings.Join(parts, "\n")
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("provider: failed to find chapter body at %s", p.url)
	}
	return []byte(body), nil
}
