// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/book"
	"github.com/jordansekky/cereal/internal/chapter"
	"github.com/jordansekky/cereal/internal/platform/apperr"
	"github.com/jordansekky/cereal/internal/platform/sqlitetest"
)

/*
TestSQLiteRepository_CreateChapters_FKViolation asserts that inserting
chapters against a book id that doesn't exist maps to NotFound("Book")
rather than a raw constraint error (spec.md §4.B / §7).
*/
func TestSQLiteRepository_CreateChapters_FKViolation(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := chapter.NewSQLiteRepository(db)

	_, err := repo.CreateChapters(context.Background(), []chapter.NewChapter{
		{BookID: "00000000-0000-4000-8000-000000000000", Title: "Ch 1", Metadata: chapter.Metadata{Kind: chapter.MetadataPale}},
	})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

// seedBook persists a Book via the book package's own repository, the only
// way to satisfy chapters' FK in a store-backed test.
func seedBook(t *testing.T, db *sql.DB) string {
	t.Helper()
	repo := book.NewSQLiteRepository(db)
	now := time.Now().UTC()
	b, err := repo.CreateBook(context.Background(), book.Book{
		Title: "Pact", Author: "Wildbow",
		Metadata:  book.Metadata{Kind: book.MetadataPale},
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return b.ID
}

/*
TestSQLiteRepository_CreateChapters_FreshBookDiscovery reproduces spec.md
§8 scenario 1: three stub chapters inserted for a fresh book, each with
html=nil and epub=nil.
*/
func TestSQLiteRepository_CreateChapters_FreshBookDiscovery(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := chapter.NewSQLiteRepository(db)
	bookID := seedBook(t, db)
	ctx := context.Background()

	created, err := repo.CreateChapters(ctx, []chapter.NewChapter{
		{BookID: bookID, Title: "Ch 1", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/1"}},
		{BookID: bookID, Title: "Ch 2", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/2"}},
		{BookID: bookID, Title: "Ch 3", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/3"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, c := range created {
		assert.Nil(t, c.HTML)
		assert.Nil(t, c.EPUB)
		assert.False(t, c.HasBody())
		assert.False(t, c.HasEPUB())
	}

	stubs, err := repo.ListChaptersWithoutBody(ctx)
	require.NoError(t, err)
	assert.Len(t, stubs, 3)
}

/*
TestSQLiteRepository_HydrationAndConversion reproduces spec.md §8 scenarios
2 and 3: attaching html moves a chapter out of ListChaptersWithoutBody and
into ListChaptersWithoutEPUB; attaching epub then clears it from that list
too.
*/
func TestSQLiteRepository_HydrationAndConversion(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := chapter.NewSQLiteRepository(db)
	bookID := seedBook(t, db)
	ctx := context.Background()

	created, err := repo.CreateChapters(ctx, []chapter.NewChapter{
		{BookID: bookID, Title: "Ch 1", Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://example.com/1"}},
	})
	require.NoError(t, err)
	id := created[0].ID

	_, err = repo.UpdateChapter(ctx, id, []byte("<p>body-1</p>"), nil)
	require.NoError(t, err)

	withoutBody, err := repo.ListChaptersWithoutBody(ctx)
	require.NoError(t, err)
	assert.Empty(t, withoutBody)

	withoutEPUB, err := repo.ListChaptersWithoutEPUB(ctx)
	require.NoError(t, err)
	require.Len(t, withoutEPUB, 1)
	assert.Equal(t, []byte("<p>body-1</p>"), withoutEPUB[0].HTML)

	_, err = repo.UpdateChapter(ctx, id, nil, []byte("EPUB-<p>body-1</p>"))
	require.NoError(t, err)

	withoutEPUB, err = repo.ListChaptersWithoutEPUB(ctx)
	require.NoError(t, err)
	assert.Empty(t, withoutEPUB)

	got, err := repo.GetChapter(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.HasBody())
	assert.True(t, got.HasEPUB())
}

/*
TestSQLiteRepository_ListChaptersWithEPUBSinceCursor_CursorComparison
reproduces spec.md §8 scenario 4/5's cursor semantics and testable
invariant 4: only converted chapters strictly newer than the cursor are
selected, and a nil cursor selects everything with an epub.
*/
func TestSQLiteRepository_ListChaptersWithEPUBSinceCursor_CursorComparison(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := chapter.NewSQLiteRepository(db)
	bookID := seedBook(t, db)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 3; i++ {
		created, err := repo.CreateChapters(ctx, []chapter.NewChapter{
			{BookID: bookID, Title: chapterTitle(i), Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: chapterURL(i)}},
		})
		require.NoError(t, err)
		ids = append(ids, created[0].ID)
		time.Sleep(2 * time.Millisecond)
	}

	// Only the first two get an epub; the third stays unconverted and must
	// never be selected, even though it is newer than the cursor used below
	// (invariant 1: epub implies html, and only epub-bearing rows qualify).
	_, err := repo.UpdateChapter(ctx, ids[0], []byte("<p>1</p>"), []byte("EPUB-1"))
	require.NoError(t, err)
	_, err = repo.UpdateChapter(ctx, ids[1], []byte("<p>2</p>"), []byte("EPUB-2"))
	require.NoError(t, err)

	all, err := repo.ListChaptersWithEPUBSinceCursor(ctx, bookID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ids[0], all[0].ID)
	assert.Equal(t, ids[1], all[1].ID)

	first, err := repo.GetChapter(ctx, ids[0])
	require.NoError(t, err)

	sinceFirst, err := repo.ListChaptersWithEPUBSinceCursor(ctx, bookID, &first.CreatedAt)
	require.NoError(t, err)
	require.Len(t, sinceFirst, 1)
	assert.Equal(t, ids[1], sinceFirst[0].ID)

	second, err := repo.GetChapter(ctx, ids[1])
	require.NoError(t, err)
	sinceSecond, err := repo.ListChaptersWithEPUBSinceCursor(ctx, bookID, &second.CreatedAt)
	require.NoError(t, err)
	assert.Empty(t, sinceSecond)
}

/*
TestSQLiteRepository_MostRecentChapterByCreatedAt covers Discovery's dedup
anchor: nil for a book with no chapters, otherwise the latest by
created_at.
*/
func TestSQLiteRepository_MostRecentChapterByCreatedAt(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := chapter.NewSQLiteRepository(db)
	bookID := seedBook(t, db)
	ctx := context.Background()

	none, err := repo.MostRecentChapterByCreatedAt(ctx, bookID)
	require.NoError(t, err)
	assert.Nil(t, none)

	var lastID string
	for i := 1; i <= 3; i++ {
		created, err := repo.CreateChapters(ctx, []chapter.NewChapter{
			{BookID: bookID, Title: chapterTitle(i), Metadata: chapter.Metadata{Kind: chapter.MetadataPale, URL: chapterURL(i)}},
		})
		require.NoError(t, err)
		lastID = created[0].ID
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := repo.MostRecentChapterByCreatedAt(ctx, bookID)
	require.NoError(t, err)
	require.NotNil(t, recent)
	assert.Equal(t, lastID, recent.ID)
}

func chapterTitle(i int) string { return "Ch " + string(rune('0'+i)) }
func chapterURL(i int) string   { return "https://example.com/" + string(rune('0'+i)) }
