package market

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

type UsersRepo struct{ DB *pgxpool.Pool }

func (r *UsersRepo) Create(ctx context.Context, u *User) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO users (full_name, email, username, phone_number, password_hash, program)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, full_name, email, username, phone_number, program, balance, sold, created_at`,
		u.FullName, u.Email, u.Username, u.PhoneNumber, u.PasswordHash, u.Program)

	var out User
	err := row.Scan(&out.ID, &out.FullName, &out.Email, &out.Username,
		&out.PhoneNumber, &out.Program, &out.Balance, &out.Sold, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &out, nil
}

// GetByIdentifier matches a user by email or username, for login.
func (r *UsersRepo) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, full_name, email, username, phone_number, password_hash, program, balance, sold, created_at
		FROM users WHERE email = $1 OR username = $1`, identifier)

	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Username, &u.PhoneNumber,
		&u.PasswordHash, &u.Program, &u.Balance, &u.Sold, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, full_name, email, username, phone_number, password_hash, program, balance, sold, created_at
		FROM users WHERE username = $1`, username)

	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Username, &u.PhoneNumber,
		&u.PasswordHash, &u.Program, &u.Balance, &u.Sold, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
