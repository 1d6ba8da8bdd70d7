// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository is the persistence boundary for Book, implemented against
// the embedded SQLite store.
type Repository interface {
	CreateBook(ctx context.Context, b Book) (Book, error)
	UpdateBook(ctx context.Context, b Book) (Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	ListBooks(ctx context.Context, filter Filter) ([]Book, error)
	DeleteBook(ctx context.Context, id string) error
}
