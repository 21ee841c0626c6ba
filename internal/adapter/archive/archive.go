// Package archive stores raw evaluation artifacts (digest, prompt, model
// response) in an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

const region = "us-east-1"

// Store implements domain.Archiver.
type Store struct {
	client *minio.Client
	bucket string
}

var _ domain.Archiver = (*Store)(nil)

// New connects to cfg.ArchiveEndpoint and makes sure the bucket exists.
func New(ctx context.Context, cfg config.Config) (*Store, error) {
	cli, err := minio.New(cfg.ArchiveEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, ""),
		Secure: cfg.ArchiveUseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("op=archive.New: %w", err)
	}
	exists, err := cli.BucketExists(ctx, cfg.ArchiveBucket)
	if err != nil {
		return nil, fmt.Errorf("op=archive.New: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.ArchiveBucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("op=archive.New: %w", err)
		}
	}
	return &Store{client: cli, bucket: cfg.ArchiveBucket}, nil
}

// Put uploads body under key.
func (s *Store) Put(ctx domain.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("op=archive.Put: %w", err)
	}
	return nil
}

// Key returns the object key of one artifact of an evaluation run:
// <record>/<yyyymmddThhmmss>-<run>/<name>.
func Key(recordID, runID string, at time.Time, name string) string {
	return path.Join(recordID, at.UTC().Format("20060102T150405")+"-"+runID, name)
}
