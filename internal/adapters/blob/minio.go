package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ domain.PhotoStore = (*MinioPhotoStore)(nil)

// MinioPhotoStore keeps profile photos in one bucket, one object per profile
// at "profiles/{profileId}". Re-uploads overwrite in place so the stored URL
// stays stable.
type MinioPhotoStore struct {
	client *minio.Client
	bucket string
}

func NewMinioPhotoStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioPhotoStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: failed to create minio client: %w", err)
	}

	store := &MinioPhotoStore{
		client: client,
		bucket: bucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinioPhotoStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("blob: bucket check failed: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("blob: bucket create failed: %w", err)
	}
	return nil
}

func (s *MinioPhotoStore) objectName(profileID string) string {
	return "profiles/" + profileID
}

func (s *MinioPhotoStore) Upload(ctx context.Context, profileID string, r io.Reader, size int64, contentType string) (string, error) {
	name := s.objectName(profileID)

	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("blob: photo upload failed: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, name), nil
}
