package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router registers every endpoint of the store API.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.ErrorHandleMiddleware)
	subAuth := router.NewRoute().Subrouter()
	subAuth.Use(h.AuthMiddleware)
	subAdmin := router.NewRoute().Subrouter()
	subAdmin.Use(h.AdminMiddleware)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	router.HandleFunc("/users/signup", h.Signup).Methods(http.MethodPost)
	router.HandleFunc("/users/signin", h.Signin).Methods(http.MethodPost)
	subAuth.HandleFunc("/users/logout", h.Logout).Methods(http.MethodPost)
	subAuth.HandleFunc("/users/change_password", h.ChangePassword).Methods(http.MethodPost)
	subAdmin.HandleFunc("/users/create", h.CreateUser).Methods(http.MethodPost)

	router.HandleFunc("/products", h.GetAllProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{category}", h.GetCategory).Methods(http.MethodGet)
	router.HandleFunc("/products/{category}/{id}", h.GetProduct).Methods(http.MethodGet)
	subAdmin.HandleFunc("/products/{category}/add", h.CreateProduct).Methods(http.MethodPost)
	subAdmin.HandleFunc("/products/{category}/{id}", h.UpdateProduct).Methods(http.MethodPut)
	subAdmin.HandleFunc("/products/{category}/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	subAdmin.HandleFunc("/products/{category}/{id}/quantity", h.UpdateQuantity).Methods(http.MethodPut)
	subAdmin.HandleFunc("/products/{category}/{id}/colors", h.AddColor).Methods(http.MethodPost)
	subAdmin.HandleFunc("/products/{category}/{id}/colors/{colorId}", h.DeleteColor).Methods(http.MethodDelete)
	subAdmin.HandleFunc("/products/{category}/{id}/colors/{colorId}/sizes", h.AddVariant).Methods(http.MethodPost)
	subAdmin.HandleFunc("/products/{category}/{id}/colors/{colorId}/sizes/{variantId}", h.DeleteVariant).Methods(http.MethodDelete)

	subAuth.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	subAuth.HandleFunc("/cart", h.AddToCart).Methods(http.MethodPost)
	subAuth.HandleFunc("/cart", h.UpdateCartItem).Methods(http.MethodPut)
	subAuth.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	subAuth.HandleFunc("/cart/{id}", h.RemoveFromCart).Methods(http.MethodDelete)

	subAuth.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	subAuth.HandleFunc("/orders", h.GetCurrentUserOrders).Methods(http.MethodGet)
	subAdmin.HandleFunc("/orders/all", h.GetAllOrders).Methods(http.MethodGet)
	subAuth.HandleFunc("/orders/{id:[0-9]+}", h.GetOrderById).Methods(http.MethodGet)
	subAdmin.HandleFunc("/orders/{id:[0-9]+}", h.SetOrderStatus).Methods(http.MethodPut)
	subAuth.HandleFunc("/orders/{id:[0-9]+}", h.DeleteOrder).Methods(http.MethodDelete)
	subAuth.HandleFunc("/orders/{id:[0-9]+}/cancel", h.CancelOrder).Methods(http.MethodPost)
	subAuth.HandleFunc("/orders/{id:[0-9]+}/payment", h.CreatePayment).Methods(http.MethodPost)

	router.HandleFunc("/payments/webhook", h.PaymentWebhook).Methods(http.MethodPost)
	return router
}
