// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"time"

	"github.com/jordansekky/cereal/internal/platform/validate"
	"github.com/jordansekky/cereal/pkg/uuid"
)

// Service implements the business rules around Book, on top of [Repository].
type Service struct {
	repo Repository
}

// NewService constructs a [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateBook validates and persists a new Book.
//
// Invariant (spec.md §3): a book's metadata variant fully determines which
// discovery provider will be used, so Kind must be one of the closed set.
func (s *Service) CreateBook(ctx context.Context, b Book) (Book, error) {
	v := &validate.Validator{}
	v.Required("title", b.Title)
	v.Required("author", b.Author)
	v.OneOf("metadata.type", string(b.Metadata.Kind),
		string(MetadataRoyalRoad), string(MetadataPale),
		string(MetadataTheWanderingInnPatreon), string(MetadataTheDailyGrindPatreon),
		string(MetadataApparatusOfChangePatreon),
	)
	if b.Metadata.Kind == MetadataRoyalRoad {
		v.Custom("metadata.royalRoadBookId", b.Metadata.RoyalRoadBookID == 0, "RoyalRoad books require royalRoadBookId")
	}
	if err := v.Err(); err != nil {
		return Book{}, err
	}

	b.ID = uuid.NewV4()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	return s.repo.CreateBook(ctx, b)
}

// UpdateBook validates and persists changes to an existing Book.
func (s *Service) UpdateBook(ctx context.Context, b Book) (Book, error) {
	v := &validate.Validator{}
	v.UUID("id", b.ID)
	v.Required("title", b.Title)
	v.Required("author", b.Author)
	if err := v.Err(); err != nil {
		return Book{}, err
	}

	b.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateBook(ctx, b)
}

// GetBook returns a single Book by id.
func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	return s.repo.GetBook(ctx, id)
}

// ListBooks returns every Book matching filter.
func (s *Service) ListBooks(ctx context.Context, filter Filter) ([]Book, error) {
	return s.repo.ListBooks(ctx, filter)
}

// DeleteBook removes a Book by id (cascades to its chapters and subscriptions).
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.repo.DeleteBook(ctx, id)
}
