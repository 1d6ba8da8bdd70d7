// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

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

var s = schema.Subscription //nolint:varnamelen

// SQLiteRepository implements [Repository] against the embedded store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a [SQLiteRepository].
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewV4()
	}
	idBytes, err := database.IDBytes(sub.ID)
	if err != nil {
		return Subscription{}, err
	}
	subscriberIDBytes, err := database.IDBytes(sub.SubscriberID)
	if err != nil {
		return Subscription{}, err
	}
	bookIDBytes, err := database.IDBytes(sub.BookID)
	if err != nil {
		return Subscription{}, err
	}

	var cursorIDBytes any
	if sub.LastDeliveredChapterID != nil {
		b, err := database.IDBytes(*sub.LastDeliveredChapterID)
		if err != nil {
			return Subscription{}, err
		}
		cursorIDBytes = b
	}
	now := database.FormatTime(sub.CreatedAt)

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Table, s.ID, s.SubscriberID, s.BookID, s.ChunkSize,
		s.LastDeliveredChapterID, s.LastDeliveredChapterCreatedAt, s.CreatedAt, s.UpdatedAt,
	)
	_, err = r.db.ExecContext(ctx, query,
		idBytes, subscriberIDBytes, bookIDBytes, sub.ChunkSize,
		cursorIDBytes, database.FormatOptionalTime(sub.LastDeliveredChapterCreatedAt), now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return Subscription{}, apperr.NotFound("Subscriber or Book")
		}
		return Subscription{}, dberr.Wrap(err, "create subscription")
	}

	sub.UpdatedAt = sub.CreatedAt
	return sub, nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	idBytes, err := database.IDBytes(sub.ID)
	if err != nil {
		return Subscription{}, err
	}
	updatedAt := database.FormatTime(sub.UpdatedAt)

	query := fmt.Sprintf(
		`UPDATE %s SET %s = ?, %s = ? WHERE %s = ?`,
		s.Table, s.ChunkSize, s.UpdatedAt, s.ID,
	)
	result, err := r.db.ExecContext(ctx, query, sub.ChunkSize, updatedAt, idBytes)
	if err != nil {
		return Subscription{}, dberr.Wrap(err, "update subscription")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Subscription{}, dberr.Wrap(err, "update subscription")
	}
	if rows == 0 {
		return Subscription{}, dberr.ErrNotFound
	}

	return r.GetSubscription(ctx, sub.ID)
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (Subscription, error) {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return Subscription{}, err
	}
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ?`,
		s.ID, s.SubscriberID, s.BookID, s.ChunkSize,
		s.LastDeliveredChapterID, s.LastDeliveredChapterCreatedAt, s.CreatedAt, s.UpdatedAt,
		s.Table, s.ID,
	)
	row := r.db.QueryRowContext(ctx, query, idBytes)
	sub, err := scanSubscription(row)
	if err != nil {
		return Subscription{}, dberr.Wrap(err, "get subscription")
	}
	return sub, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, filter Filter) ([]Subscription, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s`,
		s.ID, s.SubscriberID, s.BookID, s.ChunkSize,
		s.LastDeliveredChapterID, s.LastDeliveredChapterCreatedAt, s.CreatedAt, s.UpdatedAt,
		s.Table,
	)
	var conds []string
	var args []any
	if filter.ID != nil {
		idBytes, err := database.IDBytes(*filter.ID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf("%s = ?", s.ID))
		args = append(args, idBytes)
	}
	if filter.SubscriberID != nil {
		idBytes, err := database.IDBytes(*filter.SubscriberID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf("%s = ?", s.SubscriberID))
		args = append(args, idBytes)
	}
	if filter.BookID != nil {
		idBytes, err := database.IDBytes(*filter.BookID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf("%s = ?", s.BookID))
		args = append(args, idBytes)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", s.CreatedAt)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list subscriptions")
	}
	defer rows.Close()

	subs := make([]Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "list subscriptions")
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, s.Table, s.ID)
	result, err := r.db.ExecContext(ctx, query, idBytes)
	if err != nil {
		return dberr.Wrap(err, "delete subscription")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "delete subscription")
	}
	if rows == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// AdvanceCursor persists the denormalized cursor pair (spec.md §3's
// denormalization invariant: last_delivered_chapter_created_at must always
// equal the referenced chapter's created_at). The WHERE clause repeats the
// non-decreasing guard from [Subscription.AdvanceCursor] atomically against
// the stored row, so the cursor cannot be moved backward even if two
// deliveries race between the service's read and this write (spec.md §8
// testable property 3).
func (r *SQLiteRepository) AdvanceCursor(ctx context.Context, id string, chapterID string, chapterCreatedAt time.Time) error {
	idBytes, err := database.IDBytes(id)
	if err != nil {
		return err
	}
	chapterIDBytes, err := database.IDBytes(chapterID)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE %s SET %s = ?, %s = ?, %s = ?
		 WHERE %s = ? AND (%s IS NULL OR %s < ?)`,
		s.Table, s.LastDeliveredChapterID, s.LastDeliveredChapterCreatedAt, s.UpdatedAt,
		s.ID, s.LastDeliveredChapterCreatedAt, s.LastDeliveredChapterCreatedAt,
	)
	now := database.FormatTime(time.Now().UTC())
	newCursor := database.FormatTime(chapterCreatedAt)
	result, err := r.db.ExecContext(ctx, query, chapterIDBytes, newCursor, now, idBytes, newCursor)
	if err != nil {
		return dberr.Wrap(err, "advance cursor")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "advance cursor")
	}
	if rows > 0 {
		return nil
	}

	// No row matched either because id doesn't exist, or because the
	// WHERE guard correctly refused to move the cursor backward; tell
	// these apart so a guarded no-op doesn't surface as a 404.
	if _, err := r.GetSubscription(ctx, id); err != nil {
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (Subscription, error) {
	var (
		idBytes, subscriberIDBytes, bookIDBytes []byte
		cursorIDBytes                           []byte
		cursorCreatedAt                         sql.NullString
		createdAtStr, updatedAtStr              string
		sub                                     Subscription
	)
	if err := row.Scan(&idBytes, &subscriberIDBytes, &bookIDBytes, &sub.ChunkSize,
		&cursorIDBytes, &cursorCreatedAt, &createdAtStr, &updatedAtStr); err != nil {
		return Subscription{}, err
	}

	id, err := database.IDString(idBytes)
	if err != nil {
		return Subscription{}, err
	}
	sub.ID = id

	subscriberID, err := database.IDString(subscriberIDBytes)
	if err != nil {
		return Subscription{}, err
	}
	sub.SubscriberID = subscriberID

	bookID, err := database.IDString(bookIDBytes)
	if err != nil {
		return Subscription{}, err
	}
	sub.BookID = bookID

	if cursorIDBytes != nil {
		cid, err := database.IDString(cursorIDBytes)
		if err != nil {
			return Subscription{}, err
		}
		sub.LastDeliveredChapterID = &cid
	}
	if cursorCreatedAt.Valid {
		t, err := database.ParseTime(cursorCreatedAt.String)
		if err != nil {
			return Subscription{}, err
		}
		sub.LastDeliveredChapterCreatedAt = &t
	}

	createdAt, err := database.ParseTime(createdAtStr)
	if err != nil {
		return Subscription{}, err
	}
	sub.CreatedAt = createdAt

	updatedAt, err := database.ParseTime(updatedAtStr)
	if err != nil {
		return Subscription{}, err
	}
	sub.UpdatedAt = updatedAt

	return sub, nil
}
