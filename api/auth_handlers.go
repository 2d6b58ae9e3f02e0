package api

import (
	"net/http"

	"dreamchain/models"
)

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid         bool   `json:"valid"`
	UserID        int64  `json:"userId,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// Login exchanges a signed wallet message for an access token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.services.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Verify reports whether a token is valid; an invalid token is not an error
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	claims, err := h.services.Auth.VerifyToken(req.Token)
	if err != nil {
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:         true,
		UserID:        claims.UserID,
		WalletAddress: claims.WalletAddress,
	})
}
