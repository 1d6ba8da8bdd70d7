// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordansekky/cereal/internal/chapter"
)

/*
TestMetadata_MarshalUnmarshal_RoundTrip checks that every metadata kind
survives an encode/decode cycle through the column's JSON text.
*/
func TestMetadata_MarshalUnmarshal_RoundTrip(t *testing.T) {
	password := "hunter2"
	tests := []struct {
		name string
		meta chapter.Metadata
	}{
		{"royalroad", chapter.Metadata{
			Kind: chapter.MetadataRoyalRoad, RoyalRoadBookID: 42, RoyalRoadChapterID: 7,
		}},
		{"pale", chapter.Metadata{Kind: chapter.MetadataPale, URL: "https://palewebserial.wordpress.com/2020/01/01/1-1"}},
		{"wandering_inn", chapter.Metadata{Kind: chapter.MetadataTheWanderingInnPatreon, URL: "https://patreon.com/posts/1"}},
		{"apparatus_with_password", chapter.Metadata{
			Kind: chapter.MetadataApparatusOfChangePatreon, URL: "https://patreon.com/posts/2", Password: &password,
		}},
		{"daily_grind", chapter.Metadata{Kind: chapter.MetadataTheDailyGrindPatreon}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := chapter.MarshalMetadata(tt.meta)
			require.NoError(t, err)

			decoded, err := chapter.UnmarshalMetadata(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.meta, decoded)
		})
	}
}

/*
TestChapter_OrderKey prefers PublishedAt over CreatedAt, falling back when
PublishedAt is unset.
*/
func TestChapter_OrderKey(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	publishedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("published_at_set", func(t *testing.T) {
		c := chapter.Chapter{CreatedAt: createdAt, PublishedAt: &publishedAt}
		assert.Equal(t, publishedAt, c.OrderKey())
	})

	t.Run("published_at_unset", func(t *testing.T) {
		c := chapter.Chapter{CreatedAt: createdAt}
		assert.Equal(t, createdAt, c.OrderKey())
	})
}

/*
TestChapter_HasBody_HasEPUB tracks the stub -> body -> converted state
machine (spec.md §4.E).
*/
func TestChapter_HasBody_HasEPUB(t *testing.T) {
	stub := chapter.Chapter{}
	assert.False(t, stub.HasBody())
	assert.False(t, stub.HasEPUB())

	withBody := chapter.Chapter{HTML: []byte("<p>hi</p>")}
	assert.True(t, withBody.HasBody())
	assert.False(t, withBody.HasEPUB())

	withEPUB := chapter.Chapter{HTML: []byte("<p>hi</p>"), EPUB: []byte("epub-bytes")}
	assert.True(t, withEPUB.HasBody())
	assert.True(t, withEPUB.HasEPUB())
}

/*
TestChapter_Shallow drops the HTML/EPUB blobs but keeps every other field.
*/
func TestChapter_Shallow(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := chapter.Chapter{
		ID: "c1", BookID: "b1", Title: "Chapter One",
		HTML: []byte("<p>hi</p>"), EPUB: []byte("epub-bytes"), CreatedAt: createdAt,
	}

	shallow := c.Shallow()
	assert.Equal(t, c.ID, shallow.ID)
	assert.Equal(t, c.BookID, shallow.BookID)
	assert.Equal(t, c.Title, shallow.Title)
	assert.Equal(t, c.CreatedAt, shallow.CreatedAt)
}
