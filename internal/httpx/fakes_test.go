package httpx

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"notebazaar/internal/market"
)

// memStore is an in-memory stand-in for the Postgres repos, shared by the
// handler tests and the end-to-end scenario.
type memStore struct {
	mu        sync.Mutex
	users     []*market.User
	notes     []*market.Note
	purchases []*market.Purchase
	payments  []*market.Payment
	nextID    int64
}

func newMemStore() *memStore { return &memStore{nextID: 1} }

func (m *memStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) Create(ctx context.Context, u *market.User) (*market.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email || e.Username == u.Username {
			return nil, market.ErrDuplicateUser
		}
	}
	cp := *u
	cp.ID = m.id()
	cp.CreatedAt = time.Now()
	m.users = append(m.users, &cp)
	out := cp
	return &out, nil
}

func (m *memStore) GetByIdentifier(ctx context.Context, identifier string) (*market.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == identifier || u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, market.ErrUserNotFound
}

func (m *memStore) userByUsername(username string) *market.User {
	for _, u := range m.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (m *memStore) CreateNote(ctx context.Context, n *market.Note) (*market.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	cp.ID = m.id()
	cp.CreatedAt = time.Now()
	m.notes = append(m.notes, &cp)
	out := cp
	return &out, nil
}

func (m *memStore) ListNotes(ctx context.Context, seller string) ([]market.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []market.Note{}
	for _, n := range m.notes {
		if seller == "" || n.Seller == seller {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) GetNote(ctx context.Context, id int64) (*market.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notes {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, market.ErrNoteNotFound
}

func (m *memStore) RecordPurchase(ctx context.Context, buyer string, noteID int64, paymentIntentID string) (*market.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var note *market.Note
	for _, n := range m.notes {
		if n.ID == noteID {
			note = n
			break
		}
	}
	if note == nil {
		return nil, market.ErrNoteNotFound
	}
	b := m.userByUsername(buyer)
	if b == nil {
		return nil, market.ErrUserNotFound
	}
	for _, p := range m.purchases {
		if p.NoteID == noteID {
			return nil, market.ErrNoteAlreadySold
		}
	}

	p := &market.Purchase{
		ID:          m.id(),
		Buyer:       buyer,
		NoteID:      noteID,
		SellerID:    note.UserID,
		BuyerID:     b.ID,
		PurchasedAt: time.Now(),
	}
	m.purchases = append(m.purchases, p)

	if seller := m.userByUsername(note.Seller); seller != nil {
		seller.Balance += note.Price
		seller.Sold++
	}
	m.payments = append(m.payments, &market.Payment{
		ID:              m.id(),
		BuyerID:         b.ID,
		SellerID:        note.UserID,
		Amount:          note.Price,
		NoteID:          noteID,
		PaymentIntentID: paymentIntentID,
		Status:          "succeeded",
	})

	out := *p
	return &out, nil
}

func (m *memStore) ListByBuyer(ctx context.Context, buyer string) ([]market.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ps := []*market.Purchase{}
	for _, p := range m.purchases {
		if p.Buyer == buyer {
			ps = append(ps, p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID > ps[j].ID })

	out := []market.Note{}
	for _, p := range ps {
		for _, n := range m.notes {
			if n.ID == p.NoteID {
				out = append(out, *n)
			}
		}
	}
	return out, nil
}

// notesFacade adapts memStore to the NotesStore interface (method names differ
// because memStore also implements UsersStore.Create).
type notesFacade struct{ m *memStore }

func (f notesFacade) Create(ctx context.Context, n *market.Note) (*market.Note, error) {
	return f.m.CreateNote(ctx, n)
}
func (f notesFacade) List(ctx context.Context, seller string) ([]market.Note, error) {
	return f.m.ListNotes(ctx, seller)
}
func (f notesFacade) Get(ctx context.Context, id int64) (*market.Note, error) {
	return f.m.GetNote(ctx, id)
}

// memStorage collects saved documents in memory.
type memStorage struct {
	mu    sync.Mutex
	saved []string
}

func (s *memStorage) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, filename)
	return "/uploads/" + strings.ReplaceAll(filename, " ", "_"), nil
}

// fakeGateway returns a canned client secret.
type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	err          error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.lastAmount = amount
	g.lastCurrency = currency
	return "pi_test_secret_123", nil
}
