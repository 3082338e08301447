package market

import "errors"

var (
	ErrDuplicateUser   = errors.New("email or username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoteNotFound    = errors.New("note not found")
	ErrNoteAlreadySold = errors.New("note already sold")
)
