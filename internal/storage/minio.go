// Package storage holds user-uploaded objects (avatars, server icons) in
// an S3-compatible store.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore wraps a MinIO client with bucket-scoped operations.
type ObjectStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

// NewObjectStore creates a MinIO client and ensures the bucket exists.
func NewObjectStore(endpoint, accessKey, secretKey, bucket string) (*ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &ObjectStore{client: client, bucket: bucket, endpoint: endpoint}, nil
}

// Put stores an object in the bucket.
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// URL returns the public URL for an object.
func (s *ObjectStore) URL(key string) string {
	return fmt.Sprintf("http://%s/%s/%s", s.endpoint, s.bucket, key)
}

// Delete removes an object from the bucket.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
