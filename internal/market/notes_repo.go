package market

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotesRepo struct{ DB *pgxpool.Pool }

const noteColumns = `id, title, description, program, semester, subject, price, seller, user_id, pdf_path, created_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.Title, &n.Description, &n.Program, &n.Semester,
		&n.Subject, &n.Price, &n.Seller, &n.UserID, &n.PDFPath, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotesRepo) Create(ctx context.Context, n *Note) (*Note, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO notes (title, description, program, semester, subject, price, seller, user_id, pdf_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+noteColumns,
		n.Title, n.Description, n.Program, n.Semester, n.Subject, n.Price, n.Seller, n.UserID, n.PDFPath)
	return scanNote(row)
}

// List returns every note, or only those of one seller, newest first.
// No pagination: the catalog is assumed small enough to ship whole.
func (r *NotesRepo) List(ctx context.Context, seller string) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at DESC, id DESC`
	args := []any{}
	if seller != "" {
		query = `SELECT ` + noteColumns + ` FROM notes WHERE seller = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, seller)
	}

	rows, err := r.DB.Query(ctx, query, args...)
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

func (r *NotesRepo) Get(ctx context.Context, id int64) (*Note, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return n, nil
}
