package market

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchasesRepo struct{ DB *pgxpool.Pool }

// RecordPurchase performs the whole purchase as one transaction: purchase row,
// seller balance/sold update, payment ledger row. All committed or none.
// The note row is locked for the duration, and the unique index on
// purchases(note_id) makes the first buyer the only buyer.
func (r *PurchasesRepo) RecordPurchase(ctx context.Context, buyer string, noteID int64, paymentIntentID string) (*Purchase, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var seller string
	var price int
	var sellerID int64
	err = tx.QueryRow(ctx, `
		SELECT seller, price, user_id FROM notes WHERE id = $1 FOR UPDATE`, noteID).
		Scan(&seller, &price, &sellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	var buyerID int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, buyer).Scan(&buyerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var p Purchase
	err = tx.QueryRow(ctx, `
		INSERT INTO purchases (buyer, note_id, seller_id, buyer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, buyer, note_id, seller_id, buyer_id, purchased_at`,
		buyer, noteID, sellerID, buyerID).
		Scan(&p.ID, &p.Buyer, &p.NoteID, &p.SellerID, &p.BuyerID, &p.PurchasedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrNoteAlreadySold
		}
		return nil, err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE users SET balance = balance + $1, sold = sold + 1 WHERE id = $2`,
		price, sellerID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrUserNotFound
	}

	// Status is recorded as a literal; the ledger is not reconciled against
	// the processor's own state.
	var intentID any
	if paymentIntentID != "" {
		intentID = paymentIntentID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO payments (buyer_id, seller_id, amount, note_id, payment_intent_id, status)
		VALUES ($1, $2, $3, $4, $5, 'succeeded')`,
		buyerID, sellerID, price, noteID, intentID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByBuyer joins purchases to notes, newest purchase first.
func (r *PurchasesRepo) ListByBuyer(ctx context.Context, buyer string) ([]Note, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT notes.id, notes.title, notes.description, notes.program, notes.semester,
		       notes.subject, notes.price, notes.seller, notes.user_id, notes.pdf_path, notes.created_at
		FROM purchases
		JOIN notes ON purchases.note_id = notes.id
		WHERE purchases.buyer = $1
		ORDER BY purchases.purchased_at DESC, purchases.id DESC`, buyer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
