// Package storage persists uploaded note documents. The disk backend mirrors
// the /uploads directory the mobile app downloads from; the s3 backend targets
// any S3-compatible store (MinIO in development).
package storage

import (
	"context"
	"io"
)

type Store interface {
	// Save writes the document and returns the path recorded on the note,
	// e.g. "/uploads/1693488000-calc.pdf" or a full object URL.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}
