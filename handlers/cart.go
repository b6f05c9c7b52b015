package handlers

import (
	"net/http"

	"badmintonStore/entities"

	"github.com/gorilla/mux"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cs.GetCart(r.Context(), claimsFrom(r.Context()).UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req entities.CartRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	cart, err := h.cs.AddItem(r.Context(), claimsFrom(r.Context()).UserId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req entities.CartQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	cart, err := h.cs.SetItemQuantity(r.Context(), claimsFrom(r.Context()).UserId, req.LineRef, req.Quantity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := entities.LineRef{
		ProductId: mux.Vars(r)["id"],
		Color:     q.Get("color"),
		Type:      q.Get("type"),
	}
	cart, err := h.cs.RemoveItem(r.Context(), claimsFrom(r.Context()).UserId, ref)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cs.ClearCart(r.Context(), claimsFrom(r.Context()).UserId); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
