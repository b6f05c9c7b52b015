package handlers

import (
	"io"
	"net/http"
	"strconv"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/payment"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxWebhookBody = 64 << 10

func orderId(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errors.Wrap(models.ErrValidation, "order id must be a number")
	}
	return id, nil
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req entities.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	resp, err := h.ors.Checkout(r.Context(), claimsFrom(r.Context()).UserId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetCurrentUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ors.GetUserOrders(r.Context(), claimsFrom(r.Context()).UserId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ors.GetAllOrders(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrderById(w http.ResponseWriter, r *http.Request) {
	id, err := orderId(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.GetOrder(r.Context(), claimsFrom(r.Context()), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderId(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	var req entities.OrderStatusRequest
	if err = decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.UpdateOrder(r.Context(), id, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderId(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	order, err := h.ors.CancelOrder(r.Context(), claimsFrom(r.Context()).UserId, id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := orderId(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	resp, err := h.ors.CreatePaymentIntent(r.Context(), claimsFrom(r.Context()), id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderId(r)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if err = h.ors.DeleteOrder(r.Context(), claimsFrom(r.Context()), id); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		WriteErrorResponse(w, errors.Wrap(models.ErrValidation, "unreadable webhook body"))
		return
	}
	event, err := h.payments.ParseWebhook(payload, r.Header.Get(payment.SignatureHeaderName))
	if err != nil {
		log.WithError(err).Warn("webhook rejected")
		WriteErrorResponse(w, err)
		return
	}
	if err = h.ors.ApplyPaymentEvent(r.Context(), event); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
