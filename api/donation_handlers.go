package api

import (
	"net/http"

	"dreamchain/models"

	"github.com/go-chi/chi/v5"
)

type recordDonationRequest struct {
	DreamID  flexString `json:"dreamId"`
	Amount   flexString `json:"amount"`
	TxHash   string     `json:"txHash"`
	Donor    string     `json:"donor"`
	Currency string     `json:"currency"`
}

type donationResponse struct {
	*models.Donation
	Duplicate      bool  `json:"duplicate"`
	ChancesGained  int64 `json:"chancesGained"`
	StarsAdded     int64 `json:"starsAdded"`
	DreamCompleted bool  `json:"dreamCompleted"`
}

// RecordDonation records a claimed blockchain donation for the authenticated donor
func (h *Handler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	var req recordDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Donor == "" {
		writeError(w, r, invalidInput("donor is required"))
		return
	}
	if err := requireWallet(r.Context(), req.Donor); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.services.Donations.RecordDonation(r.Context(), models.DonationRequest{
		DreamID:      string(req.DreamID),
		Amount:       string(req.Amount),
		TxHash:       req.TxHash,
		DonorAddress: req.Donor,
		Currency:     req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	code := http.StatusCreated
	if result.Duplicate {
		code = http.StatusOK
	}
	writeJSON(w, code, donationResponse{
		Donation:       result.Donation,
		Duplicate:      result.Duplicate,
		ChancesGained:  result.ChancesGained,
		StarsAdded:     result.StarsAdded,
		DreamCompleted: result.DreamCompleted,
	})
}

func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
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

	donations, err := h.services.Donations.ListDonations(r.Context(), skip, take)
	writeDonations(w, r, donations, err)
}

func (h *Handler) DonationsByDream(w http.ResponseWriter, r *http.Request) {
	dreamID, err := pathID(r, "dreamId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	donations, err := h.services.Donations.DonationsByDream(r.Context(), dreamID)
	writeDonations(w, r, donations, err)
}

func (h *Handler) DonationsByWallet(w http.ResponseWriter, r *http.Request) {
	donations, err := h.services.Donations.DonationsByWallet(r.Context(), chi.URLParam(r, "address"))
	writeDonations(w, r, donations, err)
}

func (h *Handler) DonationByTxHash(w http.ResponseWriter, r *http.Request) {
	donation, err := h.services.Donations.DonationByTxHash(r.Context(), chi.URLParam(r, "txHash"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	donation, err := h.services.Donations.GetDonation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

func writeDonations(w http.ResponseWriter, r *http.Request, donations []*models.Donation, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}
