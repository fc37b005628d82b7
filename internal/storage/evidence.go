// Package storage implements the evidence store adapter.  Uploaded bytes are
// pushed to an S3-compatible object store under a content-addressed key; when
// no store is configured or the put fails, the bytes are written to a local
// directory and a mock identifier is returned instead.  The degraded path is
// not an error: availability wins over adapter fidelity here, and callers
// only see a failure when even the local write is impossible.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/verdantlabs/verdant-backend/internal/config"
)

// EvidenceStore persists evidence files and hands back content identifiers.
type EvidenceStore struct {
	cfg config.Config
}

func NewEvidenceStore(cfg config.Config) *EvidenceStore {
	return &EvidenceStore{cfg: cfg}
}

// remoteConfigured reports whether the S3 settings are complete enough to
// attempt a remote put.
func (s *EvidenceStore) remoteConfigured() bool {
	return s.cfg.S3Endpoint != "" && s.cfg.S3Bucket != ""
}

func (s *EvidenceStore) newClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3User, s.cfg.S3Password, "")))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.S3Endpoint)
		o.UsePathStyle = true // MinIO-style addressing
	}), nil
}

// Put stores the file bytes and returns a content identifier.  The remote
// identifier is content-addressed ("sha256:<hex>", key derived from the
// bytes), so storing the same bytes twice yields the same CID.  The local
// fallback identifier is "mock:<filename>" and is only locally resolvable.
func (s *EvidenceStore) Put(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if s.remoteConfigured() {
		cid, err := s.putRemote(ctx, data, mimeType)
		if err == nil {
			return cid, nil
		}
		log.Printf("evidence: remote put failed, using local fallback: %v", err)
	}
	return s.putLocal(data, filename)
}

func (s *EvidenceStore) putRemote(ctx context.Context, data []byte, mimeType string) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	key := "evidence/" + digest

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", err
	}
	return "sha256:" + digest, nil
}

func (s *EvidenceStore) putLocal(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dest := filepath.Join(s.cfg.UploadDir, filepath.Base(filename))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return "mock:" + filepath.Base(filename), nil
}
