// Package s3 stores invoice PDFs in Amazon S3 or an S3-compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"invoicer/internal/config"
	"invoicer/internal/domain"
	"invoicer/internal/port"
)

// Invoice PDFs are small; a single part keeps uploads to one PutObject.
const partSize = 8 << 20

type pdfStore struct {
	api        *s3.Client
	presign    *s3.PresignClient
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

// NewS3Client creates an S3-backed ObjectStorage. A custom endpoint switches
// to path-style addressing for S3-compatible services.
func NewS3Client(cfg *config.StorageConfig) (port.ObjectStorage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(static))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &pdfStore{
		api:     api,
		presign: s3.NewPresignClient(api),
		uploader: manager.NewUploader(api, func(u *manager.Uploader) {
			u.PartSize = partSize
			u.Concurrency = 1
		}),
		downloader: manager.NewDownloader(api, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
	}, nil
}

// displayName turns "inv-13.pdf" into "13.pdf" for browser downloads.
func displayName(key string) string {
	return strings.TrimPrefix(path.Base(key), "inv-")
}

func isMissing(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// Upload writes the object, replacing any previous version under the key.
func (s *pdfStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(input.Bucket),
		Key:                aws.String(input.Key),
		Body:               input.Body,
		ContentType:        aws.String(input.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", displayName(input.Key))),
		CacheControl:       aws.String("no-cache"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3.Upload %s: %w", input.Key, err)
	}
	return &port.UploadOutput{Location: out.Location, ETag: aws.ToString(out.ETag)}, nil
}

// Download reads the whole object. A missing key means the PDF was never
// generated.
func (s *pdfStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrPDFNotGenerated
		}
		return nil, fmt.Errorf("s3.Download %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *pdfStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3.Delete %s: %w", key, err)
	}
	return nil
}

// GetPresignedURL signs a GET that renders the PDF inline in the browser.
func (s *pdfStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentType:        aws.String("application/pdf"),
		ResponseContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", displayName(key))),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3.GetPresignedURL %s: %w", key, err)
	}
	return req.URL, nil
}
