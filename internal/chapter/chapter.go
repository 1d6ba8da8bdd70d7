// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package chapter defines the Chapter entity — one installment of a Book —
// and its lifecycle: stub (discovered) -> body (hydrated) -> converted
// (epub assembled), per spec.md §4.E's state machine.
package chapter

import (
	"encoding/json"
	"time"
)

// MetadataKind mirrors book.MetadataKind but carries chapter-specific
// locators rather than book-specific ones.
type MetadataKind string

const (
	MetadataRoyalRoad                MetadataKind = "RoyalRoad"
	MetadataPale                     MetadataKind = "Pale"
	MetadataTheWanderingInnPatreon   MetadataKind = "TheWanderingInnPatreon"
	MetadataTheDailyGrindPatreon     MetadataKind = "TheDailyGrindPatreon"
	MetadataApparatusOfChangePatreon MetadataKind = "ApparatusOfChangePatreon"
)

// Metadata is the tagged-union variant carrying source-specific locators
// for a single chapter (spec.md §3).
type Metadata struct {
	Kind               MetadataKind `json:"type"`
	RoyalRoadBookID    uint64       `json:"royalRoadBookId,omitempty"`
	RoyalRoadChapterID uint64       `json:"royalRoadChapterId,omitempty"`
	URL                string       `json:"url,omitempty"`
	Password           *string      `json:"password,omitempty"`
}

// Chapter is one installment of a Book.
type Chapter struct {
	ID          string
	BookID      string
	Title       string
	Metadata    Metadata
	HTML        []byte
	EPUB        []byte
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShallowChapter omits HTML/EPUB bytes, used by list-style queries so large
// blobs don't cross the wire unnecessarily (recovered from the original
// source's ShallowChapter projection, see SPEC_FULL.md §12).
type ShallowChapter struct {
	ID          string
	BookID      string
	Title       string
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// Shallow projects c into its shallow form.
func (c Chapter) Shallow() ShallowChapter {
	return ShallowChapter{
		ID: c.ID, BookID: c.BookID, Title: c.Title,
		PublishedAt: c.PublishedAt, CreatedAt: c.CreatedAt,
	}
}

// OrderKey returns coalesce(published_at, created_at), the ordering key
// used everywhere a stream of chapters is serialized for reading, delivery,
// or "most recent" selection (spec.md §3) — except the Discovery and
// Delivery cursors, which compare against CreatedAt directly.
func (c Chapter) OrderKey() time.Time {
	if c.PublishedAt != nil {
		return *c.PublishedAt
	}
	return c.CreatedAt
}

// HasBody reports whether the chapter has left the stub state.
func (c Chapter) HasBody() bool { return c.HTML != nil }

// HasEPUB reports whether the chapter has been converted.
func (c Chapter) HasEPUB() bool { return c.EPUB != nil }

// NewChapter is what a provider returns: a candidate chapter not yet
// persisted (spec.md §3). Discovery is the only consumer.
type NewChapter struct {
	BookID      string
	Title       string
	Metadata    Metadata
	HTML        []byte
	EPUB        []byte
	PublishedAt *time.Time
}

// MarshalMetadata encodes m as the JSON text stored in the metadata column.
func MarshalMetadata(m Metadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalMetadata decodes the metadata column's JSON text back into a Metadata.
func UnmarshalMetadata(s string) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}
