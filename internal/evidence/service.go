// Package evidence issues presigned URLs for grievance attachments. Blobs go
// straight from the browser to an S3-compatible store; the API never proxies
// file bytes.
package evidence

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"campusvoice/internal/platform/config"
	"campusvoice/pkg/apperrors"
)

// PresignExpiry bounds how long an issued URL stays valid.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Upload is a presigned PUT grant: the storage key to record on the draft and
// the URL the client uploads to.
type Upload struct {
	Key string
	URL string
}

// Service wraps an S3-compatible bucket (MinIO in development).
type Service struct {
	cfg config.S3Config
	now func() time.Time
}

func NewService(cfg config.S3Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// WithClock overrides the clock; test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Enabled reports whether an object store endpoint is configured.
func (s *Service) Enabled() bool {
	return s.cfg.BaseEndpoint != ""
}

func (s *Service) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKey,
			s.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// StorageKey builds the object key for an upload. The identity prefix scopes
// listings per submitter; the nanosecond stamp keeps repeated filenames apart.
func (s *Service) StorageKey(identity, filename string) string {
	return fmt.Sprintf("evidence/%s/%d_%s", identity, s.now().UnixNano(), sanitizeFilename(filename))
}

// PresignUpload grants a time-limited PUT for a new evidence object.
func (s *Service) PresignUpload(ctx context.Context, identity, filename string) (Upload, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return Upload{}, apperrors.New(apperrors.CodeBadRequest, "filename must not be empty")
	}
	if !s.Enabled() {
		return Upload{}, apperrors.New(apperrors.CodeBadRequest, "evidence storage is not configured")
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return Upload{}, err
	}

	key := s.StorageKey(identity, filename)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put: %w", err)
	}

	return Upload{Key: key, URL: req.URL}, nil
}

// PresignDownload grants a time-limited GET for an existing evidence object.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperrors.New(apperrors.CodeBadRequest, "key must not be empty")
	}
	if !s.Enabled() {
		return "", apperrors.New(apperrors.CodeBadRequest, "evidence storage is not configured")
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

// sanitizeFilename strips any path components so keys never escape the
// evidence prefix.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
