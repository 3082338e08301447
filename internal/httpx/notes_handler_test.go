package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notebazaar/internal/auth"
	"notebazaar/internal/market"
)

func newNotesRouter(t *testing.T, store *memStore, st *memStorage) http.Handler {
	t.Helper()
	r := NewRouter()
	h := &NotesHandler{Notes: notesFacade{store}, Storage: st, Secret: testSecret, Service: "test"}
	h.Register(r)
	return r
}

func tokenFor(t *testing.T, id int64, username string) string {
	t.Helper()
	token, err := auth.GenerateToken(id, username, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

type uploadForm struct {
	fields  map[string]string
	pdfName string
	pdfBody []byte
}

func multipartRequest(t *testing.T, form uploadForm, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if form.pdfName != "" {
		fw, err := mw.CreateFormFile("pdf", form.pdfName)
		require.NoError(t, err)
		_, err = fw.Write(form.pdfBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/notes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func validForm() uploadForm {
	return uploadForm{
		fields: map[string]string{
			"title": "Calc Notes", "subject": "Math", "price": "100",
			"program": "CS", "semester": "3", "description": "first-year calculus",
		},
		pdfName: "calc.pdf",
		pdfBody: []byte("%PDF-1.4 fake"),
	}
}

func TestCreateNoteRequiresToken(t *testing.T) {
	h := newNotesRouter(t, newMemStore(), &memStorage{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, validForm(), ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, validForm(), "bogus.token.here"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateNoteWithoutPDFFails(t *testing.T) {
	st := &memStorage{}
	h := newNotesRouter(t, newMemStore(), st)
	token := tokenFor(t, 1, "alice")

	form := validForm()
	form.pdfName = "" // everything else valid
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, form, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.saved)
}

func TestCreateNoteValidation(t *testing.T) {
	h := newNotesRouter(t, newMemStore(), &memStorage{})
	token := tokenFor(t, 1, "alice")

	for _, missing := range []string{"title", "subject", "price"} {
		form := validForm()
		delete(form.fields, missing)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, form, token))
		assert.Equal(t, http.StatusBadRequest, w.Code, "missing %s", missing)
	}
}

func TestCreateNoteUsesTokenIdentity(t *testing.T) {
	store := newMemStore()
	st := &memStorage{}
	h := newNotesRouter(t, store, st)
	token := tokenFor(t, 7, "alice")

	form := validForm()
	form.fields["seller"] = "mallory" // spoofed field must be ignored
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, form, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var note market.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	assert.Equal(t, "alice", note.Seller)
	assert.Equal(t, int64(7), note.UserID)
	assert.Equal(t, 100, note.Price)
	assert.NotEmpty(t, note.PDFPath)
	assert.Equal(t, []string{"calc.pdf"}, st.saved)
}

func TestListNotesNewestFirstAndSellerFilter(t *testing.T) {
	store := newMemStore()
	h := newNotesRouter(t, store, &memStorage{})

	ctx := context.Background()
	for i, seller := range []string{"alice", "bob", "alice"} {
		_, err := store.CreateNote(ctx, &market.Note{
			Title: "n" + strconv.Itoa(i), Subject: "s", Price: 10, Seller: seller,
		})
		require.NoError(t, err)
	}

	get := func(path string) []market.Note {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var notes []market.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
		return notes
	}

	all := get("/notes")
	require.Len(t, all, 3)
	assert.Equal(t, "n2", all[0].Title) // newest first

	alice := get("/notes?seller=alice")
	require.Len(t, alice, 2)
	for _, n := range alice {
		assert.Equal(t, "alice", n.Seller)
	}

	// Path-style variant answers the same.
	assert.Equal(t, alice, get("/notes/seller/alice"))
}
