package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "notebazaar/internal/kafka"
	"notebazaar/internal/market"
	"notebazaar/internal/redisx"
	"notebazaar/internal/storage"
)

type NotesStore interface {
	Create(ctx context.Context, n *market.Note) (*market.Note, error)
	List(ctx context.Context, seller string) ([]market.Note, error)
}

// Publisher is the slice of kafka.Producer the handlers need.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type NotesHandler struct {
	Notes    NotesStore
	Storage  storage.Store
	Redis    *redis.Client
	Producer Publisher
	Secret   []byte
	Service  string
}

func (h *NotesHandler) Register(r *chi.Mux) {
	r.Get("/notes", h.list)
	r.Get("/notes/seller/{seller}", h.listBySeller)
	r.With(RequireAuth(h.Secret)).Post("/notes", h.create)
}

func (h *NotesHandler) list(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, r.URL.Query().Get("seller"))
}

func (h *NotesHandler) listBySeller(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, chi.URLParam(r, "seller"))
}

func (h *NotesHandler) serveList(w http.ResponseWriter, r *http.Request, seller string) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := redisx.KeyCatalogAll
	if seller != "" {
		key = fmt.Sprintf(redisx.KeyCatalogSeller, seller)
	}
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	notes, err := h.Notes.List(ctx, seller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Redis != nil {
		if b, err := json.Marshal(notes); err == nil {
			_ = h.Redis.Set(ctx, key, b, redisx.TTLCatalogCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NotesHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	// 32 MiB in memory before multipart spills to temp files.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := r.FormValue("title")
	subject := r.FormValue("subject")
	price, priceErr := strconv.Atoi(r.FormValue("price"))
	file, header, fileErr := r.FormFile("pdf")
	if title == "" || subject == "" || priceErr != nil || fileErr != nil {
		writeError(w, http.StatusBadRequest, "title, subject, price and pdf are required")
		return
	}
	defer file.Close()

	semester, _ := strconv.Atoi(r.FormValue("semester"))

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// The document is stored before the insert; a failed insert leaves the
	// file behind (see DESIGN.md).
	pdfPath, err := h.Storage.Save(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	note, err := h.Notes.Create(ctx, &market.Note{
		Title:       title,
		Description: r.FormValue("description"),
		Program:     r.FormValue("program"),
		Semester:    semester,
		Subject:     subject,
		Price:       price,
		Seller:      claims.Username,
		UserID:      claims.UserID,
		PDFPath:     pdfPath,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.invalidateCatalog(ctx, note.Seller)
	h.publishListed(r, note)

	writeJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) invalidateCatalog(ctx context.Context, seller string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalogAll, fmt.Sprintf(redisx.KeyCatalogSeller, seller)).Err()
}

func (h *NotesHandler) publishListed(r *http.Request, note *market.Note) {
	if h.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventNoteListed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(note.ID, 10),
		Payload: kafkax.MustMarshal(market.NoteListedPayload{
			NoteID: note.ID,
			Seller: note.Seller,
			Price:  note.Price,
		}),
	}
	h.Producer.Publish(market.PartitionKey(note.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventNoteListed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
