// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/platform/sqlitetest"
	"github.com/jordansekky/cereal/internal/subscriber"
)

/*
TestSQLiteRepository_CreateAndGetSubscriber round-trips a Subscriber with
both delivery channels set.
*/
func TestSQLiteRepository_CreateAndGetSubscriber(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := subscriber.NewSQLiteRepository(db)
	ctx := context.Background()

	email := "reader@example.com"
	key := "pushover-key"
	now := time.Now().UTC()
	created, err := repo.CreateSubscriber(ctx, subscriber.Subscriber{
		Name: "Reader", KindleEmail: &email, PushoverKey: &key,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	got, err := repo.GetSubscriber(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.KindleEmail)
	require.NotNil(t, got.PushoverKey)
	assert.Equal(t, email, *got.KindleEmail)
	assert.Equal(t, key, *got.PushoverKey)
}

/*
TestSQLiteRepository_CreateSubscriber_NoChannels persists a subscriber with
neither channel set (spec.md §3's "neither being set silences delivery").
*/
func TestSQLiteRepository_CreateSubscriber_NoChannels(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := subscriber.NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	created, err := repo.CreateSubscriber(ctx, subscriber.Subscriber{Name: "Silent", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	got, err := repo.GetSubscriber(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.KindleEmail)
	assert.Nil(t, got.PushoverKey)
	assert.False(t, got.HasDeliveryChannel())
}

/*
TestSQLiteRepository_DeleteSubscriber_NotFound maps a no-op DELETE to an
error rather than succeeding silently.
*/
func TestSQLiteRepository_DeleteSubscriber_NotFound(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := subscriber.NewSQLiteRepository(db)

	err := repo.DeleteSubscriber(context.Background(), "00000000-0000-4000-8000-000000000000")
	assert.Error(t, err)
}
