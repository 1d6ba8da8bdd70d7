// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// BookTable represents the 'books' table.
type BookTable struct {
	Table     string
	ID        string
	Title     string
	Author    string
	Metadata  string
	CreatedAt string
	UpdatedAt string
}

// Book is the schema definition for books.
var Book = BookTable{
	Table:     "books",
	ID:        "id",
	Title:     "title",
	Author:    "author",
	Metadata:  "metadata",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

func (t BookTable) Columns() []string {
	return []string{t.ID, t.Title, t.Author, t.Metadata, t.CreatedAt, t.UpdatedAt}
}
