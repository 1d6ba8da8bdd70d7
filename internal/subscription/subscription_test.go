// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/subscription"
)

/*
TestSubscription_AdvanceCursor_MovesForward moves the cursor when the new
chapter is strictly later than the current one (testable scenario 3).
*/
func TestSubscription_AdvanceCursor_MovesForward(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := start.Add(time.Hour)

	sub := subscription.Subscription{LastDeliveredChapterCreatedAt: &start}
	advanced := sub.AdvanceCursor("c2", next)

	require.NotNil(t, advanced.LastDeliveredChapterCreatedAt)
	assert.Equal(t, next, *advanced.LastDeliveredChapterCreatedAt)
	assert.Equal(t, "c2", *advanced.LastDeliveredChapterID)
}

/*
TestSubscription_AdvanceCursor_UnsetCursor treats a nil cursor as always
behind, so the first delivery always advances it.
*/
func TestSubscription_AdvanceCursor_UnsetCursor(t *testing.T) {
	sub := subscription.Subscription{}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	advanced := sub.AdvanceCursor("c1", at)
	require.NotNil(t, advanced.LastDeliveredChapterCreatedAt)
	assert.Equal(t, at, *advanced.LastDeliveredChapterCreatedAt)
}

/*
TestSubscription_AdvanceCursor_IsMonotone refuses to move the cursor
backward or sideways, preserving the cursor's non-decreasing contract.
*/
func TestSubscription_AdvanceCursor_IsMonotone(t *testing.T) {
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := subscription.Subscription{
		LastDeliveredChapterID:        strPtr("c5"),
		LastDeliveredChapterCreatedAt: &current,
	}

	t.Run("same_timestamp_is_noop", func(t *testing.T) {
		result := sub.AdvanceCursor("c1", current)
		assert.Equal(t, "c5", *result.LastDeliveredChapterID)
	})

	t.Run("earlier_timestamp_is_noop", func(t *testing.T) {
		earlier := current.Add(-time.Hour)
		result := sub.AdvanceCursor("c1", earlier)
		assert.Equal(t, "c5", *result.LastDeliveredChapterID)
	})
}

func strPtr(s string) *string { return &s }
