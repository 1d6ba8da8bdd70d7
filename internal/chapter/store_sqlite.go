// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jordansekky/cereal/internal/platform/apperr"
	"github.com/jordansekky/cereal/internal/platform/database"
	"github.com/jordansekky/cereal/internal/platform/database/schema"
	"github.com/jordansekky/cereal/internal/platform/dberr"
	"github.com/jordansekky/cereal/pkg/uuid"
)

// schemaChapterT aliases schema.Chapter for brevity in this file's SQL.
var schemaChapterT = schema.Chapter

// orderExpr is the shared "coalesce(published_at, created_at)" ordering
// key used by every query that streams chapters (spec.md §3), except the
// Discovery/Delivery cursor comparisons which use created_at directly.
var orderExpr = "coalesce(" + schemaChapterT.PublishedAt + ", " + schemaChapterT.CreatedAt + ")"

// SQLiteRepository implements [Repository] against the embedded store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a [SQLiteRepository].
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateChapters(ctx context.Context, newChapters []NewChapter) ([]Chapter, error) {
	if len(newChapters) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dberr.Wrap(err, "create chapters")
	}
	defer tx.Rollback() //nolint:errcheck

	created := make([]Chapter, 0, len(newChapters))
	now := time.Now().UTC()

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schemaChapterT.Table, schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title,
		schemaChapterT.Metadata, schemaChapterT.HTML, schemaChapterT.EPUB,
		schemaChapterT.PublishedAt, schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt,
	)

	for _, nc := range newChapters {
		id := uuid.NewV4()
		idBytes, err := database.IDBytes(id)
		if err != nil {
			return nil, err
		}
		bookIDBytes, err := database.IDBytes(nc.BookID)
		if err != nil {
			return nil, err
		}
		metadataJSON, err := MarshalMetadata(nc.Metadata)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, query,
			idBytes, bookIDBytes, nc.Title, metadataJSON, nc.HTML, nc.EPUB,
			database.FormatOptionalTime(nc.PublishedAt),
			database.FormatTime(now), database.FormatTime(now),
		)
		if err != nil {
			// Foreign-key violation (book deleted mid-batch) maps to
			// ResourceNotFound(book) per spec.md §4.B / §7.
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
				return nil, apperr.NotFound("Book")
			}
			return nil, dberr.Wrap(err, "create chapters")
		}

		created = append(created, Chapter{
			ID: id, BookID: nc.BookID, Title: nc.Title, Metadata: nc.Metadata,
			HTML: nc.HTML, EPUB: nc.EPUB, PublishedAt: nc.PublishedAt,
			CreatedAt: now, UpdatedAt: now,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, dberr.Wrap(err, "create chapters")
	}

	return created, nil
}

func (r *SQLiteRepository) UpdateChapter(ctx context.Context, id string, html, epub []byte) (Chapter, error) {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return Chapter{}, err
	}

	setClauses := []string{fmt.Sprintf("%s = ?", schemaChapterT.UpdatedAt)}
	args := []any{database.FormatTime(time.Now().UTC())}
	if html != nil {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", schemaChapterT.HTML))
		args = append(args, html)
	}
	if epub != nil {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", schemaChapterT.EPUB))
		args = append(args, epub)
	}
	args = append(args, idBytes)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", schemaChapterT.Table, joinSet(setClauses), schemaChapterT.ID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Chapter{}, dberr.Wrap(err, "update chapter")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Chapter{}, dberr.Wrap(err, "update chapter")
	}
	if rows == 0 {
		return Chapter{}, dberr.ErrNotFound
	}

	return r.GetChapter(ctx, id)
}

func (r *SQLiteRepository) GetChapter(ctx context.Context, id string) (Chapter, error) {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return Chapter{}, err
	}
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ?`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title, schemaChapterT.Metadata,
		schemaChapterT.HTML, schemaChapterT.EPUB, schemaChapterT.PublishedAt,
		schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt, schemaChapterT.Table, schemaChapterT.ID,
	)
	row := r.db.QueryRowContext(ctx, query, idBytes)
	c, err := scanChapter(row)
	if err != nil {
		return Chapter{}, dberr.Wrap(err, "get chapter")
	}
	return c, nil
}

func (r *SQLiteRepository) ListChaptersShallow(ctx context.Context, bookID string) ([]ShallowChapter, error) {
	bookIDBytes, err := database.IDBytes(bookID)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = ? ORDER BY %s ASC`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title,
		schemaChapterT.PublishedAt, schemaChapterT.CreatedAt,
		schemaChapterT.Table, schemaChapterT.BookID, orderExpr,
	)
	rows, err := r.db.QueryContext(ctx, query, bookIDBytes)
	if err != nil {
		return nil, dberr.Wrap(err, "list chapters")
	}
	defer rows.Close()

	out := make([]ShallowChapter, 0)
	for rows.Next() {
		var (
			idBytes, bookIDBytes []byte
			title                string
			publishedAt          sql.NullString
			createdAtStr         string
		)
		if err := rows.Scan(&idBytes, &bookIDBytes, &title, &publishedAt, &createdAtStr); err != nil {
			return nil, dberr.Wrap(err, "list chapters")
		}
		sc, err := buildShallow(idBytes, bookIDBytes, title, publishedAt, createdAtStr)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteChapter(ctx context.Context, id string) error {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, schemaChapterT.Table, schemaChapterT.ID)
	result, err := r.db.ExecContext(ctx, query, idBytes)
	if err != nil {
		return dberr.Wrap(err, "delete chapter")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "delete chapter")
	}
	if rows == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MostRecentChapterByCreatedAt(ctx context.Context, bookID string) (*Chapter, error) {
	bookIDBytes, err := database.IDBytes(bookID)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ? ORDER BY %s DESC LIMIT 1`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title, schemaChapterT.Metadata,
		schemaChapterT.HTML, schemaChapterT.EPUB, schemaChapterT.PublishedAt,
		schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt,
		schemaChapterT.Table, schemaChapterT.BookID, schemaChapterT.CreatedAt,
	)
	row := r.db.QueryRowContext(ctx, query, bookIDBytes)
	c, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "most recent chapter")
	}
	return &c, nil
}

func (r *SQLiteRepository) ListChaptersWithoutBody(ctx context.Context) ([]Chapter, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s IS NULL ORDER BY %s DESC`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title, schemaChapterT.Metadata,
		schemaChapterT.HTML, schemaChapterT.EPUB, schemaChapterT.PublishedAt,
		schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt,
		schemaChapterT.Table, schemaChapterT.HTML, orderExpr,
	)
	return r.queryChapters(ctx, query)
}

func (r *SQLiteRepository) ListChaptersWithoutEPUB(ctx context.Context) ([]Chapter, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s IS NOT NULL AND %s IS NULL ORDER BY %s DESC`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title, schemaChapterT.Metadata,
		schemaChapterT.HTML, schemaChapterT.EPUB, schemaChapterT.PublishedAt,
		schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt,
		schemaChapterT.Table, schemaChapterT.HTML, schemaChapterT.EPUB, orderExpr,
	)
	return r.queryChapters(ctx, query)
}

func (r *SQLiteRepository) ListChaptersWithEPUBSinceCursor(ctx context.Context, bookID string, sinceCreatedAt *time.Time) ([]Chapter, error) {
	bookIDBytes, err := database.IDBytes(bookID)
	if err != nil {
		return nil, err
	}

	// (? IS NULL OR created_at > ?) lets a nil cursor select everything.
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s
		 WHERE %s IS NOT NULL AND %s = ? AND (? IS NULL OR %s > ?)
		 ORDER BY %s ASC`,
		schemaChapterT.ID, schemaChapterT.BookID, schemaChapterT.Title, schemaChapterT.Metadata,
		schemaChapterT.HTML, schemaChapterT.EPUB, schemaChapterT.PublishedAt,
		schemaChapterT.CreatedAt, schemaChapterT.UpdatedAt,
		schemaChapterT.Table, schemaChapterT.EPUB, schemaChapterT.BookID,
		schemaChapterT.CreatedAt, orderExpr,
	)

	var cursorArg any
	if sinceCreatedAt != nil {
		cursorArg = database.FormatTime(*sinceCreatedAt)
	}

	rows, err := r.db.QueryContext(ctx, query, bookIDBytes, cursorArg, cursorArg)
	if err != nil {
		return nil, dberr.Wrap(err, "list chapters with epub")
	}
	defer rows.Close()
	return scanChapterRows(rows)
}

func (r *SQLiteRepository) queryChapters(ctx context.Context, query string, args ...any) ([]Chapter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list chapters")
	}
	defer rows.Close()
	return scanChapterRows(rows)
}

func scanChapterRows(rows *sql.Rows) ([]Chapter, error) {
	out := make([]Chapter, 0)
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan chapter")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChapter(row rowScanner) (Chapter, error) {
	var (
		idBytes, bookIDBytes []byte
		metadataJSON         string
		html, epub           []byte
		publishedAt          sql.NullString
		createdAtStr         string
		updatedAtStr         string
		c                    Chapter
	)
	if err := row.Scan(&idBytes, &bookIDBytes, &c.Title, &metadataJSON, &html, &epub, &publishedAt, &createdAtStr, &updatedAtStr); err != nil {
		return Chapter{}, err
	}

	id, err := database.IDString(idBytes)
	if err != nil {
		return Chapter{}, err
	}
	c.ID = id

	bookID, err := database.IDString(bookIDBytes)
	if err != nil {
		return Chapter{}, err
	}
	c.BookID = bookID

	metadata, err := UnmarshalMetadata(metadataJSON)
	if err != nil {
		return Chapter{}, err
	}
	c.Metadata = metadata
	c.HTML = html
	c.EPUB = epub

	if publishedAt.Valid {
		t, err := database.ParseTime(publishedAt.String)
		if err != nil {
			return Chapter{}, err
		}
		c.PublishedAt = &t
	}

	createdAt, err := database.ParseTime(createdAtStr)
	if err != nil {
		return Chapter{}, err
	}
	c.CreatedAt = createdAt

	updatedAt, err := database.ParseTime(updatedAtStr)
	if err != nil {
		return Chapter{}, err
	}
	c.UpdatedAt = updatedAt

	return c, nil
}

func buildShallow(idBytes, bookIDBytes []byte, title string, publishedAt sql.NullString, createdAtStr string) (ShallowChapter, error) {
	id, err := database.IDString(idBytes)
	if err != nil {
		return ShallowChapter{}, err
	}
	bookID, err := database.IDString(bookIDBytes)
	if err != nil {
		return ShallowChapter{}, err
	}
	createdAt, err := database.ParseTime(createdAtStr)
	if err != nil {
		return ShallowChapter{}, err
	}
	sc := ShallowChapter{ID: id, BookID: bookID, Title: title, CreatedAt: createdAt}
	if publishedAt.Valid {
		t, err := database.ParseTime(publishedAt.String)
		if err != nil {
			return ShallowChapter{}, err
		}
		sc.PublishedAt = &t
	}
	return sc, nil
}

func joinSet(clauses []string) string {
	out := ""
	for i, c := range clauses {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
