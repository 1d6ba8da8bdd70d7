// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jordansekky/cereal/internal/platform/request"
	"github.com/jordansekky/cereal/internal/platform/respond"
	"github.com/jordansekky/cereal/pkg/pagination"
	"github.com/jordansekky/cereal/pkg/slice"
)

// Handler exposes the CRUD surface named in spec.md §6. It is an external
// collaborator to the pipeline — the pipeline only ever touches Book
// through [Repository].
type Handler struct {
	svc *Service
}

// NewHandler constructs a [Handler].
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// bookWire is the camelCase wire representation of a Book.
type bookWire struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Metadata Metadata `json:"metadata"`
}

func toWire(b Book) bookWire {
	return bookWire{ID: b.ID, Title: b.Title, Author: b.Author, Metadata: b.Metadata}
}

// Mount registers the five flat-verb routes onto router, matching the
// original service's axum router shape (spec.md §6).
func (h *Handler) Mount(router chi.Router) {
	router.Post("/createBook", h.create)
	router.Post("/updateBook", h.update)
	router.Get("/getBook", h.get)
	router.Get("/listBooks", h.list)
	router.Delete("/deleteBook", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var wire bookWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.svc.CreateBook(r.Context(), Book{
		Title: wire.Title, Author: wire.Author, Metadata: wire.Metadata,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, toWire(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var wire bookWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	updated, err := h.svc.UpdateBook(r.Context(), Book{
		ID: wire.ID, Title: wire.Title, Author: wire.Author, Metadata: wire.Metadata,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	b, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context(), Filter{})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	params := pagination.FromRequest(r)
	page, total := pagination.Page(books, params)
	respond.Paginated(w, slice.Map(page, toWire), pagination.NewMeta(params.Page, params.Limit, total))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	if err := h.svc.DeleteBook(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
