package upload

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore archives uploads in a Cloud Storage bucket.
type GCSStore struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSStore creates a Cloud Storage backed store. Extra client options
// are passed through to storage.NewClient.
func NewGCSStore(ctx context.Context, bucketName, credentialsFile string, opts ...option.ClientOption) (*GCSStore, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCSStore{
		client:     client,
		bucketName: bucketName,
		prefix:     "uploads/",
	}, nil
}

// ObjectName returns the object key used for filename.
func (s *GCSStore) ObjectName(filename string) string {
	return s.prefix + path.Base(filename)
}

// Save uploads r as an object and returns its gs:// URI.
func (s *GCSStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !Allowed(filename) {
		return "", fmt.Errorf("%s: %w", filename, ErrNotAllowed)
	}

	// canceling ctx before Close aborts the upload instead of committing it
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectName := s.ObjectName(filename)
	writer := s.client.Bucket(s.bucketName).Object(objectName).NewWriter(ctx)
	writer.ContentType = "application/pdf"

	if _, err := io.Copy(writer, r); err != nil {
		cancel()
		writer.Close()
		return "", fmt.Errorf("writing object: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing object writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucketName, objectName), nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
