// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/platform/apperr"
	"github.com/jordansekky/cereal/internal/platform/sqlitetest"
)

func newTestBook(title string) book.Book {
	now := time.Now().UTC()
	return book.Book{
		Title:     title,
		Author:    "Wildbow",
		Metadata:  book.Metadata{Kind: book.MetadataPale},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

/*
TestSQLiteRepository_CreateAndGetBook round-trips a Book through the
embedded store, including its JSON-encoded metadata variant.
*/
func TestSQLiteRepository_CreateAndGetBook(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := book.NewSQLiteRepository(db)
	ctx := context.Background()

	created, err := repo.CreateBook(ctx, newTestBook("Pact"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, book.MetadataPale, got.Metadata.Kind)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
}

/*
TestSQLiteRepository_GetBook_NotFound maps a missing row to a 404 AppError,
not a raw sql.ErrNoRows.
*/
func TestSQLiteRepository_GetBook_NotFound(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := book.NewSQLiteRepository(db)

	_, err := repo.GetBook(context.Background(), "00000000-0000-4000-8000-000000000000")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestSQLiteRepository_UpdateBook_NotFound maps a no-op UPDATE against an
unknown id to NotFound rather than silently succeeding.
*/
func TestSQLiteRepository_UpdateBook_NotFound(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := book.NewSQLiteRepository(db)

	b := newTestBook("Ghost")
	b.ID = "00000000-0000-4000-8000-000000000000"
	_, err := repo.UpdateBook(context.Background(), b)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

func TestSQLiteRepository_ListBooks_FiltersByID(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := book.NewSQLiteRepository(db)
	ctx := context.Background()

	a, err := repo.CreateBook(ctx, newTestBook("Pact"))
	require.NoError(t, err)
	_, err = repo.CreateBook(ctx, newTestBook("Worm"))
	require.NoError(t, err)

	all, err := repo.ListBooks(ctx, book.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListBooks(ctx, book.Filter{ID: &a.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].ID)
}

func TestSQLiteRepository_DeleteBook(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := book.NewSQLiteRepository(db)
	ctx := context.Background()

	b, err := repo.CreateBook(ctx, newTestBook("Pact"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteBook(ctx, b.ID))

	_, err = repo.GetBook(ctx, b.ID)
	require.Error(t, err)
}
