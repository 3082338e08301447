package market

import "time"

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	Program      string    `json:"program"`
	Balance      int       `json:"balance"`
	Sold         int       `json:"sold"`
	CreatedAt    time.Time `json:"created_at"`
}

type Note struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Program     string    `json:"program"`
	Semester    int       `json:"semester"`
	Subject     string    `json:"subject"`
	Price       int       `json:"price"`
	Seller      string    `json:"seller"`
	UserID      int64     `json:"user_id"`
	PDFPath     string    `json:"pdf_path"`
	CreatedAt   time.Time `json:"created_at"`
}

type Purchase struct {
	ID          int64     `json:"id"`
	Buyer       string    `json:"buyer"`
	NoteID      int64     `json:"note_id"`
	SellerID    int64     `json:"seller_id"`
	BuyerID     int64     `json:"buyer_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type Payment struct {
	ID              int64     `json:"id"`
	BuyerID         int64     `json:"buyer_id"`
	SellerID        int64     `json:"seller_id"`
	Amount          int       `json:"amount"`
	NoteID          int64     `json:"note_id"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// SellerStats is the cached dashboard view maintained by the worker.
type SellerStats struct {
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	Sold     int    `json:"sold"`
}
