package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSExporter uploads saved-set snapshots to a Google Cloud Storage
// bucket as JSON documents.
type GCSExporter struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSExporter creates a new exporter. With an empty credentialsFile
// the application default credentials are used.
func NewGCSExporter(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSExporter, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSExporter{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

// Export uploads the set and returns the object name it was written to.
func (e *GCSExporter) Export(ctx context.Context, set *SavedSet) (string, error) {
	doc, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode set: %w", err)
	}

	objectName := fmt.Sprintf("%s%s/%s.json", e.objectPrefix, set.ID, time.Now().UTC().Format("20060102T150405Z"))
	w := e.client.Bucket(e.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(doc); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload set: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalise upload: %w", err)
	}

	slog.Info("Exported set to GCS", "bucket", e.bucket, "object", objectName)
	return objectName, nil
}

// ListExports returns the object names previously exported for a set.
func (e *GCSExporter) ListExports(ctx context.Context, setID string) ([]string, error) {
	it := e.client.Bucket(e.bucket).Objects(ctx, &storage.Query{
		Prefix: fmt.Sprintf("%s%s/", e.objectPrefix, setID),
	})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close releases the underlying client.
func (e *GCSExporter) Close() error {
	return e.client.Close()
}
