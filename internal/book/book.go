// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package book defines the Book entity: a serial being tracked, and the
// closed set of source variants that determine which discovery provider
// the pipeline dispatches to for it.
package book

import (
	"encoding/json"
	"time"
)

// MetadataKind is the closed set of sources a Book can come from.
type MetadataKind string

const (
	MetadataRoyalRoad                MetadataKind = "RoyalRoad"
	MetadataPale                     MetadataKind = "Pale"
	MetadataTheWanderingInnPatreon   MetadataKind = "TheWanderingInnPatreon"
	MetadataTheDailyGrindPatreon     MetadataKind = "TheDailyGrindPatreon"
	MetadataApparatusOfChangePatreon MetadataKind = "ApparatusOfChangePatreon"
)

// Metadata is the tagged-union variant identifying a book's source.
// It is serialized as JSON into a single text column. Only the field(s)
// relevant to Kind are populated; the rest are left zero.
type Metadata struct {
	Kind            MetadataKind `json:"type"`
	RoyalRoadBookID uint64       `json:"royalRoadBookId,omitempty"`
}

// Book is a serial being tracked by the pipeline.
type Book struct {
	ID        string
	Title     string
	Author    string
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a ListBooks query. A nil field is unconstrained.
type Filter struct {
	ID *string
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
