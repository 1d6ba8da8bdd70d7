// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jordansekky/cereal/internal/platform/request"
	"github.com/jordansekky/cereal/internal/platform/respond"
	"github.com/jordansekky/cereal/pkg/pagination"
	"github.com/jordansekky/cereal/pkg/slice"
)

// Handler exposes the CRUD surface named in spec.md §6 ("analogous routes
// for chapters"). It is an external collaborator — the pipeline only ever
// touches Chapter through [Repository].
type Handler struct {
	svc *Service
}

// NewHandler constructs a [Handler].
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// chapterWire is the camelCase wire representation of a Chapter, omitting
// the html/epub blobs (those are internal pipeline state, not a CRUD
// concern; no route returns them).
type chapterWire struct {
	ID          string     `json:"id,omitempty"`
	BookID      string     `json:"bookId"`
	Title       string     `json:"title"`
	Metadata    Metadata   `json:"metadata"`
	PublishedAt *timeWire  `json:"publishedAt,omitempty"`
	CreatedAt   *timeWire  `json:"createdAt,omitempty"`
}

type timeWire = string

func toWire(c ShallowChapter) chapterWire {
	w := chapterWire{ID: c.ID, BookID: c.BookID, Title: c.Title}
	if c.PublishedAt != nil {
		s := c.PublishedAt.Format("2006-01-02T15:04:05.999999999Z07:00")
		w.PublishedAt = &s
	}
	createdAt := c.CreatedAt.Format("2006-01-02T15:04:05.999999999Z07:00")
	w.CreatedAt = &createdAt
	return w
}

// Mount registers the flat-verb routes onto router (spec.md §6).
func (h *Handler) Mount(router chi.Router) {
	router.Post("/createChapter", h.create)
	router.Get("/getChapter", h.get)
	router.Get("/listChapters", h.list)
	router.Delete("/deleteChapter", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var wire struct {
		BookID   string   `json:"bookId"`
		Title    string   `json:"title"`
		Metadata Metadata `json:"metadata"`
	}
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.svc.CreateChapters(r.Context(), []NewChapter{{
		BookID: wire.BookID, Title: wire.Title, Metadata: wire.Metadata,
	}})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if len(created) == 0 {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, toWire(created[0].Shallow()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	c, err := h.svc.GetChapter(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(c.Shallow()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	bookID := requestutil.Query(r, "bookId")
	chapters, err := h.svc.ListChaptersShallow(r.Context(), bookID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	params := pagination.FromRequest(r)
	page, total := pagination.Page(chapters, params)
	respond.Paginated(w, slice.Map(page, toWire), pagination.NewMeta(params.Page, params.Limit, total))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	if err := h.svc.DeleteChapter(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
