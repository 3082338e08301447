package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "notebazaar/internal/kafka"
	"notebazaar/internal/market"
)

type PurchasesStore interface {
	RecordPurchase(ctx context.Context, buyer string, noteID int64, paymentIntentID string) (*market.Purchase, error)
	ListByBuyer(ctx context.Context, buyer string) ([]market.Note, error)
}

type NoteGetter interface {
	Get(ctx context.Context, id int64) (*market.Note, error)
}

type PurchasesHandler struct {
	Purchases PurchasesStore
	Notes     NoteGetter
	Producer  Publisher
	Service   string
}

type purchaseReq struct {
	Buyer           string `json:"buyer"`
	NoteID          int64  `json:"note_id"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

func (h *PurchasesHandler) Register(r *chi.Mux) {
	r.Post("/purchases", h.create)
	r.Get("/purchases/{buyer}", h.listByBuyer)
}

func (h *PurchasesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Buyer == "" || req.NoteID == 0 {
		writeError(w, http.StatusBadRequest, "missing buyer or note_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	purchase, err := h.Purchases.RecordPurchase(ctx, req.Buyer, req.NoteID, req.PaymentIntentID)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrNoteNotFound):
			writeError(w, http.StatusNotFound, "note not found")
		case errors.Is(err, market.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "buyer not found")
		case errors.Is(err, market.ErrNoteAlreadySold):
			writeError(w, http.StatusConflict, "note already sold")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.publishPurchased(r, purchase)

	writeJSON(w, http.StatusOK, purchase)
}

func (h *PurchasesHandler) listByBuyer(w http.ResponseWriter, r *http.Request) {
	buyer := chi.URLParam(r, "buyer")
	if buyer == "" {
		writeError(w, http.StatusBadRequest, "missing buyer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	notes, err := h.Purchases.ListByBuyer(ctx, buyer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *PurchasesHandler) publishPurchased(r *http.Request, p *market.Purchase) {
	if h.Producer == nil {
		return
	}

	payload := market.NotePurchasedPayload{
		NoteID:   p.NoteID,
		Buyer:    p.Buyer,
		SellerID: p.SellerID,
	}
	// Seller name and amount ride along when the note is still readable;
	// the worker re-queries Postgres either way.
	if h.Notes != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if note, err := h.Notes.Get(ctx, p.NoteID); err == nil {
			payload.Seller = note.Seller
			payload.Amount = note.Price
		}
	}

	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventNotePurchased,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(p.NoteID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Producer.Publish(market.PartitionKey(p.NoteID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventNotePurchased)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
