// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordansekky/cereal/internal/platform/database"
	"github.com/jordansekky/cereal/internal/platform/database/schema"
	"github.com/jordansekky/cereal/internal/platform/dberr"
	"github.com/jordansekky/cereal/pkg/uuid"
)

// SQLiteRepository implements [Repository] against the embedded store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a [SQLiteRepository].
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateBook(ctx context.Context, b Book) (Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewV4()
	}
	idBytes, err := database.IDBytes(b.ID)
	if err != nil {
		return Book{}, err
	}
	metadataJSON, err := MarshalMetadata(b.Metadata)
	if err != nil {
		return Book{}, err
	}
	now := database.FormatTime(b.CreatedAt)
	if b.CreatedAt.IsZero() {
		return Book{}, fmt.Errorf("book: CreatedAt must be set by the service layer")
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?)`,
		schema.Book.Table, schema.Book.ID, schema.Book.Title, schema.Book.Author,
		schema.Book.Metadata, schema.Book.CreatedAt, schema.Book.UpdatedAt,
	)
	_, err = r.db.ExecContext(ctx, query, idBytes, b.Title, b.Author, metadataJSON, now, now)
	if err != nil {
		return Book{}, dberr.Wrap(err, "create book")
	}

	b.UpdatedAt = b.CreatedAt
	return b, nil
}

func (r *SQLiteRepository) UpdateBook(ctx context.Context, b Book) (Book, error) {
	idBytes, err := database.IDBytes(b.ID)
	if err != nil {
		return Book{}, err
	}
	metadataJSON, err := MarshalMetadata(b.Metadata)
	if err != nil {
		return Book{}, err
	}
	updatedAt := database.FormatTime(b.UpdatedAt)

	query := fmt.Sprintf(
		`UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		schema.Book.Table, schema.Book.Title, schema.Book.Author,
		schema.Book.Metadata, schema.Book.UpdatedAt, schema.Book.ID,
	)
	result, err := r.db.ExecContext(ctx, query, b.Title, b.Author, metadataJSON, updatedAt, idBytes)
	if err != nil {
		return Book{}, dberr.Wrap(err, "update book")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Book{}, dberr.Wrap(err, "update book")
	}
	if rows == 0 {
		return Book{}, dberr.ErrNotFound
	}

	return r.GetBook(ctx, b.ID)
}

func (r *SQLiteRepository) GetBook(ctx context.Context, id string) (Book, error) {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return Book{}, err
	}

	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ?`,
		schema.Book.ID, schema.Book.Title, schema.Book.Author, schema.Book.Metadata,
		schema.Book.CreatedAt, schema.Book.UpdatedAt, schema.Book.Table, schema.Book.ID,
	)
	row := r.db.QueryRowContext(ctx, query, idBytes)
	b, err := scanBook(row)
	if err != nil {
		return Book{}, dberr.Wrap(err, "get book")
	}
	return b, nil
}

func (r *SQLiteRepository) ListBooks(ctx context.Context, filter Filter) ([]Book, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s FROM %s`,
		schema.Book.ID, schema.Book.Title, schema.Book.Author, schema.Book.Metadata,
		schema.Book.CreatedAt, schema.Book.UpdatedAt, schema.Book.Table,
	)
	args := []any{}
	if filter.ID != nil {
		idBytes, err := database.IDBytes(*filter.ID)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" WHERE %s = ?", schema.Book.ID)
		args = append(args, idBytes)
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", schema.Book.CreatedAt)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list books")
	}
	defer rows.Close()

	books := make([]Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "list books")
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *SQLiteRepository) DeleteBook(ctx context.Context, id string) error {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, schema.Book.Table, schema.Book.ID)
	result, err := r.db.ExecContext(ctx, query, idBytes)
	if err != nil {
		return dberr.Wrap(err, "delete book")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "delete book")
	}
	if rows == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanBook.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var (
		idBytes      []byte
		metadataJSON string
		createdAtStr string
		updatedAtStr string
		b            Book
	)
	if err := row.Scan(&idBytes, &b.Title, &b.Author, &metadataJSON, &createdAtStr, &updatedAtStr); err != nil {
		return Book{}, err
	}

	id, err := database.IDString(idBytes)
	if err != nil {
		return Book{}, err
	}
	b.ID = id

	metadata, err := UnmarshalMetadata(metadataJSON)
	if err != nil {
		return Book{}, err
	}
	b.Metadata = metadata

	createdAt, err := database.ParseTime(createdAtStr)
	if err != nil {
		return Book{}, err
	}
	b.CreatedAt = createdAt

	updatedAt, err := database.ParseTime(updatedAtStr)
	if err != nil {
		return Book{}, err
	}
	b.UpdatedAt = updatedAt

	return b, nil
}
