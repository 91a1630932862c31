package firebase

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const (
	metaTemporary  = "temporary"
	metaUploadedAt = "uploaded_at"
)

// StorageClient abstracts image storage. Uploads start out marked temporary;
// once the owning record is persisted they are promoted with MarkPermanent.
// Temporary objects older than the cleanup window are swept periodically.
type StorageClient interface {
	UploadImage(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	MarkPermanent(ctx context.Context, imageURL string) error
	DeleteByURL(ctx context.Context, imageURL string) error
	CleanupTemporary(ctx context.Context, olderThan time.Duration) (int, error)
}

type gcsStorageClient struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewStorageClient returns a StorageClient backed by the configured Cloud
// Storage bucket. Init must have been called first.
func NewStorageClient() StorageClient {
	if App == nil {
		log.Fatal("firebase app not initialized")
	}

	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		log.Fatal("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := App.Storage(context.Background())
	if err != nil {
		log.Fatalf("Firebase storage client init failed: %v", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		log.Fatalf("Storage bucket %q init failed: %v", bucketName, err)
	}

	return &gcsStorageClient{bucket: bucket, bucketName: bucketName}
}

func (s *gcsStorageClient) UploadImage(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx:]
	}
	objectPath := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		metaTemporary:  "true",
		metaUploadedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectPath), nil
}

func (s *gcsStorageClient) MarkPermanent(ctx context.Context, imageURL string) error {
	objectPath, ok := s.objectPath(imageURL)
	if !ok {
		return nil
	}

	_, err := s.bucket.Object(objectPath).Update(ctx, storage.ObjectAttrsToUpdate{
		Metadata: map[string]string{metaTemporary: "false"},
	})
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (s *gcsStorageClient) DeleteByURL(ctx context.Context, imageURL string) error {
	objectPath, ok := s.objectPath(imageURL)
	if !ok {
		return nil
	}

	err := s.bucket.Object(objectPath).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (s *gcsStorageClient) CleanupTemporary(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	deleted := 0

	it := s.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, err
		}

		if attrs.Metadata[metaTemporary] != "true" {
			continue
		}
		uploadedAt, err := time.Parse(time.RFC3339, attrs.Metadata[metaUploadedAt])
		if err != nil || uploadedAt.After(cutoff) {
			continue
		}

		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
			log.Printf("Cleanup: failed to delete %s: %v", attrs.Name, err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// objectPath extracts the bucket-relative object path from a public URL.
// URLs that do not point into our bucket are ignored.
func (s *gcsStorageClient) objectPath(imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", false
	}
	prefix := "/" + s.bucketName + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	path, err := url.PathUnescape(strings.TrimPrefix(u.Path, prefix))
	if err != nil {
		return "", false
	}
	return path, true
}
