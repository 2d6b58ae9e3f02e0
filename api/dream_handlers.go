package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"dreamchain/models"
	"dreamchain/service"

	"github.com/shopspring/decimal"
)

type createDreamRequest struct {
	ID          *int64     `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
	Goal        flexString `json:"goal"`
	Category    *string    `json:"category"`
}

type nextIDResponse struct {
	NextID int64 `json:"nextId"`
}

func (h *Handler) CreateDream(w http.ResponseWriter, r *http.Request) {
	var req createDreamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, r, service.ErrUnauthorized)
		return
	}
	if req.UserID == 0 {
		req.UserID = claims.UserID
	}
	if req.UserID != claims.UserID {
		writeError(w, r, errForbidden)
		return
	}

	// An absent goal falls back to the default; an explicit zero is rejected downstream
	var goal *decimal.Decimal
	if raw := strings.TrimSpace(string(req.Goal)); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, r, invalidInput("goal must be a number"))
			return
		}
		goal = &parsed
	}

	dream, err := h.services.Dreams.CreateDream(r.Context(), models.NewDream{
		ID:          req.ID,
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Goal:        goal,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dream)
}

func (h *Handler) ListDreams(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	take, err := queryInt(r, "take", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dreams, err := h.services.Dreams.ListDreams(r.Context(), skip, take)
	h.writeDreams(w, r, dreams, err)
}

func (h *Handler) TopDreams(w http.ResponseWriter, r *http.Request) {
	h.limitedDreams(w, r, h.services.Dreams.TopDreams)
}

func (h *Handler) NewDreams(w http.ResponseWriter, r *http.Request) {
	h.limitedDreams(w, r, h.services.Dreams.NewDreams)
}

func (h *Handler) CompletedDreams(w http.ResponseWriter, r *http.Request) {
	h.limitedDreams(w, r, h.services.Dreams.CompletedDreams)
}

func (h *Handler) limitedDreams(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int) ([]*models.Dream, error)) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dreams, err := fetch(r.Context(), limit)
	h.writeDreams(w, r, dreams, err)
}

func (h *Handler) writeDreams(w http.ResponseWriter, r *http.Request, dreams []*models.Dream, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if dreams == nil {
		dreams = []*models.Dream{}
	}
	writeJSON(w, http.StatusOK, dreams)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Dreams.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) NextDreamID(w http.ResponseWriter, r *http.Request) {
	id, err := h.services.Dreams.NextDreamID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextIDResponse{NextID: id})
}

func (h *Handler) RandomDream(w http.ResponseWriter, r *http.Request) {
	dream, err := h.services.Dreams.RandomDream(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if dream == nil {
		writeError(w, r, fmt.Errorf("%w: no dreams yet", service.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, dream)
}

func (h *Handler) DreamsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	dreams, err := h.services.Dreams.DreamsByUser(r.Context(), userID)
	h.writeDreams(w, r, dreams, err)
}

func (h *Handler) GetDream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	dream, err := h.services.Dreams.GetDream(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dream)
}

// WithdrawFunds lets a dream's creator flag its funds as withdrawn
func (h *Handler) WithdrawFunds(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, r, service.ErrUnauthorized)
		return
	}

	dream, err := h.services.Dreams.GetDream(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if dream.UserID != claims.UserID {
		writeError(w, r, errForbidden)
		return
	}

	dream, err = h.services.Dreams.WithdrawFunds(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dream)
}
