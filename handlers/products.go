package handlers

import (
	"net/http"

	"badmintonStore/entities"

	"github.com/gorilla/mux"
)

func (h *Handler) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	all, err := h.cts.ListAll(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	prods, err := h.cts.ListByCategory(r.Context(), mux.Vars(r)["category"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prod, err := h.cts.GetProduct(r.Context(), vars["category"], vars["id"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var prod entities.Product
	if err := decodeBody(r, &prod); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	created, err := h.cts.CreateProduct(r.Context(), mux.Vars(r)["category"], prod)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch entities.ProductPatch
	if err := decodeBody(r, &patch); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.cts.UpdateProduct(r.Context(), vars["category"], vars["id"], patch)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.cts.DeleteProduct(r.Context(), vars["category"], vars["id"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddColor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var color entities.ColorVariant
	if err := decodeBody(r, &color); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.cts.AddColor(r.Context(), vars["category"], vars["id"], color)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prod)
}

func (h *Handler) AddVariant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var variant entities.Variant
	if err := decodeBody(r, &variant); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.cts.AddVariant(r.Context(), vars["category"], vars["id"], vars["colorId"], variant)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prod)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req entities.QuantityRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod, err := h.cts.UpdateQuantity(r.Context(), vars["category"], vars["id"], req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

func (h *Handler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prod, err := h.cts.DeleteColor(r.Context(), vars["category"], vars["id"], vars["colorId"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

func (h *Handler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prod, err := h.cts.DeleteVariant(r.Context(), vars["category"], vars["id"], vars["colorId"], vars["variantId"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}
