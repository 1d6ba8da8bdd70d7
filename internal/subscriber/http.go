// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscriber

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/jordansekky/cereal/internal/platform/request"
	"github.com/jordansekky/cereal/internal/platform/respond"
	"github.com/jordansekky/cereal/pkg/pagination"
	"github.com/jordansekky/cereal/pkg/slice"
)

// Handler exposes the CRUD surface named in spec.md §6 ("analogous routes
// for subscribers").
type Handler struct {
	svc *Service
}

// NewHandler constructs a [Handler].
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// subscriberWire is the camelCase wire representation of a Subscriber.
type subscriberWire struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	KindleEmail *string `json:"kindleEmail,omitempty"`
	PushoverKey *string `json:"pushoverKey,omitempty"`
}

func toWire(s Subscriber) subscriberWire {
	return subscriberWire{ID: s.ID, Name: s.Name, KindleEmail: s.KindleEmail, PushoverKey: s.PushoverKey}
}

// Mount registers the five flat-verb routes onto router (spec.md §6).
func (h *Handler) Mount(router chi.Router) {
	router.Post("/createSubscriber", h.create)
	router.Post("/updateSubscriber", h.update)
	router.Get("/getSubscriber", h.get)
	router.Get("/listSubscribers", h.list)
	router.Delete("/deleteSubscriber", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var wire subscriberWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	created, err := h.svc.CreateSubscriber(r.Context(), Subscriber{
		Name: wire.Name, KindleEmail: wire.KindleEmail, PushoverKey: wire.PushoverKey,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, toWire(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var wire subscriberWire
	if err := requestutil.DecodeJSON(r, &wire); err != nil {
		respond.Error(w, r, err)
		return
	}
	updated, err := h.svc.UpdateSubscriber(r.Context(), Subscriber{
		ID: wire.ID, Name: wire.Name, KindleEmail: wire.KindleEmail, PushoverKey: wire.PushoverKey,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(updated))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	s, err := h.svc.GetSubscriber(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, toWire(s))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.svc.ListSubscribers(r.Context(), Filter{})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	params := pagination.FromRequest(r)
	page, total := pagination.Page(subscribers, params)
	respond.Paginated(w, slice.Map(page, toWire), pagination.NewMeta(params.Page, params.Limit, total))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Query(r, "id")
	if err := h.svc.DeleteSubscriber(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
