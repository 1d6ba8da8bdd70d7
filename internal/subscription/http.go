// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jordansekky/cereal/internal/platform/request"
	"github.com/jordansekky/cereal/internal/platform/respond"
	"github.com/jordansekky/cereal/pkg/pagination"
	"github.com/jordansekky/cereal/pkg/pointer"
	"github.com/jordansekky/cereal/pkg/slice"
)

// Handler exposes the CRUD surface named in spec.md §6 ("analogous routes
// for subscriptions").
type Handler struct {
	svc *Service
}

// NewHandler constructs a [Handler].
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// subscriptionWire is the camelCase wire representation of a Subscription.
type subscriptionWire struct {
	ID                            string  `json:"id,omitempty"`
	SubscriberID                  string  `json:"subscriberId"`
	BookID                        string  `json:"bookId"`
	ChunkSize                     int     `json:"chunkSize"`
	LastDeliveredChapterID        *string `json:"lastDeliveredChapterId,omitempty"`
	LastDeliveredChapterCreatedAt *string `json:"lastDeliveredChapterCreatedAt,omitempty"`
}

func toWire(s Subscription) subscriptionWire {
	w := subscriptionWire{
		ID: s.ID, SubscriberID: s.SubscriberID, BookID: s.BookID, ChunkSize: s.ChunkSize,
		LastDeliveredChapterID: s.LastDeliveredChapterID,
	}
	if s.LastDeliveredChapterCreatedAt != nil {
		ts := s.LastDeliveredChapterCreatedAt.Format(time.RFC3339Nano)
		w.LastDeliveredChapterCreatedAt = &ts
	}
	return w
}

// Mount registers the five flat-verb routes onto router (spec.md §6).
func (h *Handler) Mount(router chi.Router) {
	router.Post("/createSubscription", h.create)
	router.Post("/updateSubscription", h.update)
	router.Get("/getSubscription", h.get)
	router.Get("/listSubscriptions", h.list)
	router.Delete("/deleteSubscription", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var wire subscriptionWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.svc.CreateSubscription(r.Context(), Subscription{
		SubscriberID: wire.SubscriberID, BookID: wire.BookID, ChunkSize: wire.ChunkSize,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, toWire(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var wire subscriptionWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	updated, err := h.svc.UpdateSubscription(r.Context(), Subscription{
		ID: wire.ID, ChunkSize: wire.ChunkSize,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	sub, err := h.svc.GetSubscription(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(sub))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if v := requestutil.Query(r, "subscriberId"); v != "" {
		filter.SubscriberID = pointer.To(v)
	}
	if v := requestutil.Query(r, "bookId"); v != "" {
		filter.BookID = pointer.To(v)
	}
	subs, err := h.svc.ListSubscriptions(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	params := pagination.FromRequest(r)
	page, total := pagination.Page(subs, params)
	respond.Paginated(w, slice.Map(page, toWire), pagination.NewMeta(params.Page, params.Limit, total))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	if err := h.svc.DeleteSubscription(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
