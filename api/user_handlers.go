package api

import (
	"net/http"
	"strings"

	"dreamchain/service"

	"github.com/go-chi/chi/v5"
)

type createUserRequest struct {
	WalletAddress string  `json:"walletAddress"`
	Username      *string `json:"username"`
	Avatar        *string `json:"avatar"`
}

type updateUsernameRequest struct {
	Username string `json:"username"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		writeError(w, r, invalidInput("walletAddress is required"))
		return
	}
	if err := requireWallet(r.Context(), req.WalletAddress); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.Users.CreateUser(r.Context(), req.WalletAddress, req.Username, req.Avatar)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.Users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUserByWallet(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.Users.GetUserByWallet(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := requireWallet(r.Context(), address); err != nil {
		writeError(w, r, err)
		return
	}

	var req updateUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.Users.UpdateUsername(r.Context(), address, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) CreatedDreams(w http.ResponseWriter, r *http.Request) {
	dreams, err := h.services.Users.CreatedDreams(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dreams)
}

func (h *Handler) DonatedDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.services.Users.DonatedDonations(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

func (h *Handler) CompletedDreamsByWallet(w http.ResponseWriter, r *http.Request) {
	dreams, err := h.services.Users.CompletedDreams(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dreams)
}

// UpdateRating recomputes a user's rating from full history
func (h *Handler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.Users.RefreshRating(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
