package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/payment"
	"badmintonStore/services"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	us       services.UserService
	cts      services.CatalogService
	cs       services.CartService
	ors      services.OrderService
	payments payment.Bridge
}

type HandlerParams struct {
	UsrService     services.UserService
	CatalogService services.CatalogService
	CrtService     services.CartService
	OrdService     services.OrderService
	Payments       payment.Bridge
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		us:       params.UsrService,
		cts:      params.CatalogService,
		cs:       params.CrtService,
		ors:      params.OrdService,
		payments: params.Payments,
	}
}

type ctxKeyClaims struct{}

func claimsFrom(ctx context.Context) models.Claims {
	c, _ := ctx.Value(ctxKeyClaims{}).(models.Claims)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.WithError(err).Debug("malformed request body")
		return errors.Wrap(models.ErrValidation, "malformed JSON body")
	}
	return nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// middleware

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteErrorResponse(w, errors.Wrap(models.ErrUnauthorized, "missing bearer token"))
			return
		}
		claims, err := h.us.Authenticate(r.Context(), token)
		if err != nil {
			WriteErrorResponse(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyClaims{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware authenticates the caller and requires the admin role.
func (h *Handler) AdminMiddleware(next http.Handler) http.Handler {
	return h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !claimsFrom(r.Context()).IsAdmin() {
			WriteErrorResponse(w, errors.Wrap(models.ErrForbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"panic":      rec,
					"stacktrace": string(debug.Stack()),
				}).Error("panic occurred")
				writeJSON(w, http.StatusInternalServerError, entities.ErrorResponse{Error: "something went wrong, contact with service administration"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WriteErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "server error"
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidToken):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, models.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrUpstream):
		status, msg = http.StatusBadGateway, "payment provider unavailable, please retry later"
		log.WithError(err).Warn("upstream failure")
	default:
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, entities.ErrorResponse{Error: msg})
}
