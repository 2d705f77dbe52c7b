// Package storage keeps uploaded analysis artifacts in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"telehealth-portal/config"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

// BlobStore holds private objects by key. Keys are what gets persisted;
// readable addresses are produced on demand and may expire.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	URL(ctx context.Context, key string) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Store struct {
	client    objectPutter
	presigner objectPresigner
	bucket    string
	publicURL string
	expiry    time.Duration
}

// NewS3Store returns nil when no bucket is configured; callers treat a nil
// store as storage being switched off.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Store(client, s3.NewPresignClient(client), cfg), nil
}

func newS3Store(client objectPutter, presigner objectPresigner, cfg config.StorageConfig) *S3Store {
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		expiry:    expiry,
	}
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, data []byte) error {
	if s == nil {
		return ErrStorageDisabled
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// URL returns a readable address for key. With S3_PUBLIC_URL set the object
// is assumed to be served from there (a CDN or a public bucket policy);
// otherwise a presigned GET valid for the configured expiry is returned.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", ErrStorageDisabled
	}
	if key == "" {
		return "", nil
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
