package service

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// ImageStore abstracts the object storage that holds task image
// attachments. Implementations return a public URL for uploaded images
// and accept that same URL back for deletion.
type ImageStore interface {
	// Upload stores the image under a key derived from the task ID and
	// returns its public URL.
	Upload(ctx context.Context, taskID uuid.UUID, filename, contentType string, data io.Reader) (string, error)

	// Delete removes the image a previous Upload returned the URL for.
	// Deleting an already-missing image is not an error.
	Delete(ctx context.Context, imageURL string) error
}
