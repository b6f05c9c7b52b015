package handlers

import (
	"net/http"

	"badmintonStore/models"
)

type userResponse struct {
	Id    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeBody(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	uModel, err := h.us.Signup(r.Context(), creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Id: uModel.Id, Email: uModel.Email, Role: uModel.Role})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeBody(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	resp, err := h.us.Signin(r.Context(), creds.Email, creds.Password)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.us.Logout(r.Context(), claimsFrom(r.Context())); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	data := models.PasswordData{}
	if err := decodeBody(r, &data); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if err := h.us.ChangePassword(r.Context(), claimsFrom(r.Context()), data); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	if err := decodeBody(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	uModel, err := h.us.CreateUser(r.Context(), creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Id: uModel.Id, Email: uModel.Email, Role: uModel.Role})
}
