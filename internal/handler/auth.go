package handler

import (
	"encoding/json"
	"net/http"

	"github.com/younes-dz/consolestore/internal/apiclient"
)

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	s, err := h.auth.CheckAuth(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds apiclient.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.auth.Login(r.Context(), creds); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "logged in"})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "logged out"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var reg apiclient.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.auth.Register(r.Context(), reg); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		Detail string `json:"detail"`
	}{Detail: "account created"})
}

func (h *Handler) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "reset email sent"})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var change apiclient.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if change.Current == "" || change.New == "" || change.Confirm == "" {
		respondError(w, http.StatusBadRequest, "all password fields are required")
		return
	}
	if change.New != change.Confirm {
		respondError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := h.auth.ChangePassword(r.Context(), change); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "password changed"})
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.auth.MyOrders(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if orders == nil {
		orders = []apiclient.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}
