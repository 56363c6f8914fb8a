// Package services contains server-side business logic. This file implements
// UploadService, which issues single-use presigned PUT destinations on the
// S3-compatible object store.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	sc "github.com/dmitrijs2005/shopkeeper/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	now = time.Now
)

// Destination is one issued upload target.
type Destination struct {
	URL       string
	Key       string
	ExpiresAt time.Time
}

type UploadService struct {
	config *sc.Config
	logger logging.Logger

	mu      sync.Mutex
	presign *s3.PresignClient
}

func NewUploadService(config *sc.Config, logger logging.Logger) *UploadService {
	return &UploadService{
		config: config,
		logger: logger.With("module", "upload_service"),
	}
}

// StorageKey returns a fresh object key under the seller's prefix,
// e.g. listings/s-1/2026/03/07/<uuid>.
func StorageKey(sellerID string, d time.Time) string {
	d = d.UTC()
	return fmt.Sprintf("listings/%s/%04d/%02d/%02d/%v", sellerID, d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (s *UploadService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presign != nil {
		return s.presign, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	s.presign = newS3PresignClient(client)
	return s.presign, nil
}

// IssueDestination presigns a PUT for a new key owned by sellerID.
func (s *UploadService) IssueDestination(ctx context.Context, sellerID string) (*Destination, error) {
	if sellerID == "" || strings.ContainsAny(sellerID, "/\\") {
		return nil, fmt.Errorf("%w: bad seller id %q", common.ErrValidation, sellerID)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	issuedAt := now()
	key := StorageKey(sellerID, issuedAt)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	s.logger.Debug(ctx, "destination issued", "seller", sellerID, "key", key)

	return &Destination{URL: req.URL, Key: key, ExpiresAt: issuedAt.Add(s.config.PresignTTL)}, nil
}
