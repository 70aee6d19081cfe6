package secretstore

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/authserver/internal/errors"

	// Register the bucket drivers selectable through KEY_STORE_URL
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobStore implements Store on top of a gocloud.dev bucket. Writes replace the whole
// object; the file driver writes to a temporary file and renames it into place.
type BlobStore struct {
	bucket *blob.Bucket
}

// NewBlobStore wraps an already opened bucket.
func NewBlobStore(bucket *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bucket}
}

// OpenBlobStore opens the bucket at bucketURL.
// Supports: file://, mem://, s3://, gs://
func OpenBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store bucket: %w", err)
	}
	return NewBlobStore(bucket), nil
}

// Get reads the object stored at path.
func (s *BlobStore) Get(ctx context.Context, path string, silentIfNotFound bool) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, path)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			if silentIfNotFound {
				return nil, nil
			}
			return nil, apperrors.Wrapf(ErrSecretNotFound, "path %q", path)
		}
		return nil, apperrors.Wrapf(err, "failed to read %q", path)
	}
	return data, nil
}

// Upsert writes data to path.
func (s *BlobStore) Upsert(ctx context.Context, path string, data []byte) error {
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, path, data, opts); err != nil {
		return apperrors.Wrapf(err, "failed to write %q", path)
	}
	return nil
}

// Close releases the bucket.
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
