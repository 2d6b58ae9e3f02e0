package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type balanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type canCreateDreamResponse struct {
	Address        string `json:"address"`
	CanCreateDream bool   `json:"canCreateDream"`
}

func (h *Handler) VerifyTransaction(w http.ResponseWriter, r *http.Request) {
	info, err := h.services.Chain.VerifyTransaction(r.Context(), chi.URLParam(r, "txHash"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	balance, err := h.services.Chain.Balance(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Address: address, Balance: balance.String()})
}

// CanCreateDream reports whether a wallet has donated at least once
func (h *Handler) CanCreateDream(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	can, err := h.services.Dreams.CanCreateDream(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, canCreateDreamResponse{Address: address, CanCreateDream: can})
}
