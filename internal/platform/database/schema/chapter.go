// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ChapterTable represents the 'chapters' table.
type ChapterTable struct {
	Table       string
	ID          string
	BookID      string
	Title       string
	Metadata    string
	HTML        string
	EPUB        string
	PublishedAt string
	CreatedAt   string
	UpdatedAt   string
}

// Chapter is the schema definition for chapters.
var Chapter = ChapterTable{
	Table:       "chapters",
	ID:          "id",
	BookID:      "book_id",
	Title:       "title",
	Metadata:    "metadata",
	HTML:        "html",
	EPUB:        "epub",
	PublishedAt: "published_at",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

func (t ChapterTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Title, t.Metadata, t.HTML, t.EPUB,
		t.PublishedAt, t.CreatedAt, t.UpdatedAt,
	}
}

// ShallowColumns omits HTML/EPUB for list-style queries (see SPEC_FULL §12).
func (t ChapterTable) ShallowColumns() []string {
	return []string{t.ID, t.BookID, t.Title, t.PublishedAt, t.CreatedAt}
}
