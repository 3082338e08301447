package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type PaymentsHandler struct {
	Gateway IntentCreator
}

type intentReq struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

type intentResp struct {
	ClientSecret string `json:"clientSecret"`
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/create-payment-intent", h.createIntent)
}

func (h *PaymentsHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req intentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	secret, err := h.Gateway.CreateIntent(ctx, req.Amount, req.Currency)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, intentResp{ClientSecret: secret})
}
