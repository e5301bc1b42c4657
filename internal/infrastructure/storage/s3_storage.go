// Package storage provides document storage backends for registration uploads.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ regapp.DocumentStorage = (*S3DocumentStorage)(nil)

// S3API is the subset of the S3 client used for documents
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3DocumentStorage stores documents in any S3-compatible bucket (AWS S3, MinIO, RustFS)
type S3DocumentStorage struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// S3Option is a functional option for configuring S3DocumentStorage
type S3Option func(*S3DocumentStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3DocumentStorage) {
		s.logger = logger
	}
}

// WithS3Client replaces the SDK client
func WithS3Client(client S3API) S3Option {
	return func(s *S3DocumentStorage) {
		s.client = client
	}
}

// NewS3DocumentStorage creates an S3 document store from configuration.
// Static credentials are used when configured, otherwise the default AWS chain.
func NewS3DocumentStorage(ctx context.Context, cfg *config.StorageConfig, opts ...S3Option) (*S3DocumentStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret access key is required with an access key id")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	s := &S3DocumentStorage{
		bucket:  cfg.Bucket,
		baseURL: objectBaseURL(cfg.PublicURL, endpoint, cfg.Bucket, region, cfg.UsePathStyle),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return s, nil
}

// objectBaseURL picks the URL prefix recorded for stored objects
func objectBaseURL(publicURL, endpoint, bucket, region string, pathStyle bool) string {
	switch {
	case publicURL != "":
		return strings.TrimRight(publicURL, "/")
	case endpoint != "" && pathStyle:
		return strings.TrimRight(endpoint, "/") + "/" + bucket
	case endpoint != "":
		u, err := url.Parse(endpoint)
		if err != nil {
			return strings.TrimRight(endpoint, "/") + "/" + bucket
		}
		return u.Scheme + "://" + bucket + "." + u.Host
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3DocumentStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating document bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the object and returns its URL
func (s *S3DocumentStorage) Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	// the SDK signs payloads, so the body must be seekable
	seekable, ok := body.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		seekable = bytes.NewReader(raw)
		size = int64(len(raw))
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        seekable,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Debug("Document stored", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int64("size", size))
	return s.baseURL + "/" + key, nil
}

// Delete removes an object; deleting a missing key succeeds
func (s *S3DocumentStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Open streams an object from the bucket
func (s *S3DocumentStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, shared.ErrNotFound.WithMessage("Document file not found")
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return out.Body, nil
}

// Bucket returns the bucket name
func (s *S3DocumentStorage) Bucket() string {
	return s.bucket
}
