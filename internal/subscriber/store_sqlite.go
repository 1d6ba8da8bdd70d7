// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber

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

func (r *SQLiteRepository) CreateSubscriber(ctx context.Context, s Subscriber) (Subscriber, error) {
	if s.ID == "" {
		s.ID = uuid.NewV4()
	}
	idBytes, err := database.IDBytes(s.ID)
	if err != nil {
		return Subscriber{}, err
	}
	now := database.FormatTime(s.CreatedAt)

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?)`,
		schema.Subscriber.Table, schema.Subscriber.ID, schema.Subscriber.Name,
		schema.Subscriber.KindleEmail, schema.Subscriber.PushoverKey,
		schema.Subscriber.CreatedAt, schema.Subscriber.UpdatedAt,
	)
	_, err = r.db.ExecContext(ctx, query, idBytes, s.Name, nullableString(s.KindleEmail), nullableString(s.PushoverKey), now, now)
	if err != nil {
		return Subscriber{}, dberr.Wrap(err, "create subscriber")
	}

	s.UpdatedAt = s.CreatedAt
	return s, nil
}

func (r *SQLiteRepository) UpdateSubscriber(ctx context.Context, s Subscriber) (Subscriber, error) {
	idBytes, err := database.IDBytes(s.ID)
	if err != nil {
		return Subscriber{}, err
	}
	updatedAt := database.FormatTime(s.UpdatedAt)

	query := fmt.Sprintf(
		`UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		schema.Subscriber.Table, schema.Subscriber.Name, schema.Subscriber.KindleEmail,
		schema.Subscriber.PushoverKey, schema.Subscriber.UpdatedAt, schema.Subscriber.ID,
	)
	result, err := r.db.ExecContext(ctx, query, s.Name, nullableString(s.KindleEmail), nullableString(s.PushoverKey), updatedAt, idBytes)
	if err != nil {
		return Subscriber{}, dberr.Wrap(err, "update subscriber")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Subscriber{}, dberr.Wrap(err, "update subscriber")
	}
	if rows == 0 {
		return Subscriber{}, dberr.ErrNotFound
	}

	return r.GetSubscriber(ctx, s.ID)
}

func (r *SQLiteRepository) GetSubscriber(ctx context.Context, id string) (Subscriber, error) {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return Subscriber{}, err
	}
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ?`,
		schema.Subscriber.ID, schema.Subscriber.Name, schema.Subscriber.KindleEmail,
		schema.Subscriber.PushoverKey, schema.Subscriber.CreatedAt, schema.Subscriber.UpdatedAt,
		schema.Subscriber.Table, schema.Subscriber.ID,
	)
	row := r.db.QueryRowContext(ctx, query, idBytes)
	s, err := scanSubscriber(row)
	if err != nil {
		return Subscriber{}, dberr.Wrap(err, "get subscriber")
	}
	return s, nil
}

func (r *SQLiteRepository) ListSubscribers(ctx context.Context, filter Filter) ([]Subscriber, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s FROM %s`,
		schema.Subscriber.ID, schema.Subscriber.Name, schema.Subscriber.KindleEmail,
		schema.Subscriber.PushoverKey, schema.Subscriber.CreatedAt, schema.Subscriber.UpdatedAt,
		schema.Subscriber.Table,
	)
	args := []any{}
	if filter.ID != nil {
		idBytes, err := database.IDBytes(*filter.ID)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" WHERE %s = ?", schema.Subscriber.ID)
		args = append(args, idBytes)
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", schema.Subscriber.CreatedAt)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list subscribers")
	}
	defer rows.Close()

	subscribers := make([]Subscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "list subscribers")
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

func (r *SQLiteRepository) DeleteSubscriber(ctx context.Context, id string) error {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, schema.Subscriber.Table, schema.Subscriber.ID)
	result, err := r.db.ExecContext(ctx, query, idBytes)
	if err != nil {
		return dberr.Wrap(err, "delete subscriber")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "delete subscriber")
	}
	if rows == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (Subscriber, error) {
	var (
		idBytes                  []byte
		kindleEmail, pushoverKey sql.NullString
		createdAtStr, updatedAtStr string
		s                        Subscriber
	)
	if err := row.Scan(&idBytes, &s.Name, &kindleEmail, &pushoverKey, &createdAtStr, &updatedAtStr); err != nil {
		return Subscriber{}, err
	}

	id, err := database.IDString(idBytes)
	if err != nil {
		return Subscriber{}, err
	}
	s.ID = id

	if kindleEmail.Valid {
		s.KindleEmail = &kindleEmail.String
	}
	if pushoverKey.Valid {
		s.PushoverKey = &pushoverKey.String
	}

	createdAt, err := database.ParseTime(createdAtStr)
	if err != nil {
		return Subscriber{}, err
	}
	s.CreatedAt = createdAt

	updatedAt, err := database.ParseTime(updatedAtStr)
	if err != nil {
		return Subscriber{}, err
	}
	s.UpdatedAt = updatedAt

	return s, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
