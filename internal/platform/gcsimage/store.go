package gcsimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

const publicURLHost = "https://storage.googleapis.com/"

// Store implements service.ImageStore on top of a GCS bucket.
type Store struct {
	client *gcs.Client
	bucket string
	logger *slog.Logger
}

// New creates a Store for the configured bucket. When no credentials
// file is configured the client falls back to application default
// credentials.
func New(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	if log == nil {
		log = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: log.With(slog.String("component", "image_store")),
	}, nil
}

// Ensure Store implements service.ImageStore
var _ service.ImageStore = (*Store)(nil)

// Upload implements service.ImageStore.Upload
// The object key is tasks/<task id>/<random>.<ext>, so re-uploading an
// image for a task never clobbers a URL still referenced elsewhere.
func (s *Store) Upload(ctx context.Context, taskID uuid.UUID, filename, contentType string, data io.Reader) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	object := fmt.Sprintf("tasks/%s/%s%s", taskID, uuid.New(), path.Ext(filename))

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		log.Error("failed to write image to bucket",
			slog.String("error", err.Error()),
			slog.String("object", object))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if err := w.Close(); err != nil {
		log.Error("failed to finalize image upload",
			slog.String("error", err.Error()),
			slog.String("object", object))
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := publicURLHost + s.bucket + "/" + object
	log.Debug("image uploaded",
		slog.String("object", object),
		slog.String("task_id", taskID.String()))
	return url, nil
}

// Delete implements service.ImageStore.Delete
// URLs outside this store's bucket and objects that are already gone
// are both treated as successful deletes.
func (s *Store) Delete(ctx context.Context, imageURL string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	object, ok := s.objectFromURL(imageURL)
	if !ok {
		log.Warn("skipping delete of foreign image URL", slog.String("url", imageURL))
		return nil
	}

	err := s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		log.Error("failed to delete image",
			slog.String("error", err.Error()),
			slog.String("object", object))
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectFromURL(imageURL string) (string, bool) {
	prefix := publicURLHost + s.bucket + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(imageURL, prefix)
	if object == "" {
		return "", false
	}
	return object, true
}
