// Package objectstore persists tabular datasets as Parquet objects in an
// S3-compatible store (MinIO included), auto-provisioning the bucket on
// first use.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// API is the slice of the S3 surface the gateway uses. *s3.Client satisfies
// it; tests substitute an in-memory fake.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds the object store connection settings.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store is the object store gateway for one bucket.
type Store struct {
	client API
	bucket string
}

// New creates a Store from configuration. The endpoint is addressed
// path-style, which is what MinIO and most S3-compatible stores expect.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "objectstore: load aws config")
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		endpoint := scheme + cfg.Endpoint
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
	}, nil
}

// NewWithClient creates a Store over an existing S3 client.
func NewWithClient(client API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Bucket returns the bucket the store writes to.
func (s *Store) Bucket() string {
	return s.bucket
}

// EnsureBucket checks that the bucket exists and creates it if absent. It is
// idempotent: an existing bucket is not an error. A failed existence check
// surfaces the backend's error unchanged.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *s3types.NotFound
	if !errors.As(err, &notFound) {
		return eris.Wrapf(err, "objectstore: head bucket %s", s.bucket)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}); err != nil {
		return eris.Wrapf(err, "objectstore: create bucket %s", s.bucket)
	}

	zap.L().Info("bucket created", zap.String("bucket", s.bucket))
	return nil
}

// Save Parquet-encodes rows into an in-memory buffer and writes it under key,
// ensuring the bucket exists first. Returns the key unchanged. An existing
// object under the same key is overwritten.
func Save[T any](ctx context.Context, s *Store, rows []T, key string) (string, error) {
	buf := new(bytes.Buffer)
	if err := parquet.Write(buf, rows); err != nil {
		return "", eris.Wrapf(err, "objectstore: encode %s", key)
	}

	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/octet-stream"),
	}); err != nil {
		return "", eris.Wrapf(err, "objectstore: put %s", key)
	}

	zap.L().Info("dataset saved",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("rows", len(rows)),
		zap.Int("bytes", buf.Len()),
	)
	return key, nil
}

// Load fetches the object under key and Parquet-decodes it back into rows.
// The response body is closed on every exit path.
func Load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "objectstore: get %s", key)
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "objectstore: read %s", key)
	}

	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrapf(err, "objectstore: decode %s", key)
	}

	return rows, nil
}
