package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"invoicer/internal/config"
	"invoicer/internal/domain"
	"invoicer/internal/port"
)

type minioClient struct {
	client *minio.Client
}

// NewMinioClient creates a MinIO-backed ObjectStorage and makes sure the
// configured bucket exists.
func NewMinioClient(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	m := &minioClient{client: client}
	if err := m.ensureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *minioClient) ensureBucket(ctx context.Context, bucket string) error {
	found, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio bucket exists: %w", err)
	}
	if found {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio make bucket: %w", err)
	}
	return nil
}

func (m *minioClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	size := input.Size
	if size == 0 {
		size = -1
	}
	info, err := m.client.PutObject(ctx, input.Bucket, input.Key, input.Body, size, minio.PutObjectOptions{
		ContentType: input.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("minio upload: %w", err)
	}
	return &port.UploadOutput{Location: info.Location, ETag: info.ETag}, nil
}

func (m *minioClient) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio download: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrPDFNotGenerated
		}
		return nil, fmt.Errorf("minio download read: %w", err)
	}
	return data, nil
}

func (m *minioClient) Delete(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete: %w", err)
	}
	return nil
}

func (m *minioClient) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, time.Duration(expirySeconds)*time.Second, nil)
	if err != nil {
		return "", fmt.Errorf("minio presign: %w", err)
	}
	return u.String(), nil
}
