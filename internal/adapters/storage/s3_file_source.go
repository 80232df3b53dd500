package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/pkg/config"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// S3FileSource retrieves uploaded files from an S3 bucket and issues
// presigned PUT slots for the browser to upload into
type S3FileSource struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	prefix     string
	presignTTL time.Duration
}

// Ensure S3FileSource implements FileSource
var _ providers.FileSource = (*S3FileSource)(nil)

// NewS3FileSource creates a file source backed by S3
func NewS3FileSource(ctx context.Context, cfg *config.ObjectStoreConfig) (*S3FileSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg)

	// Verify bucket access; the bucket may be provisioned out of band
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Bucket).Msg("bucket access check failed")
	}

	return &S3FileSource{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		presignTTL: time.Duration(cfg.PresignTTLSecs) * time.Second,
	}, nil
}

// Fetch returns the decoded text of an uploaded file. A UTF-8 BOM left by
// spreadsheet exports is stripped before parsing.
func (s *S3FileSource) Fetch(ctx context.Context, fileID string) (string, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(fileID)),
	})
	if err != nil {
		return "", apperrors.NewNotFoundError("uploaded file not found: " + fileID)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", apperrors.NewInternalError("failed to read uploaded file", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return string(data), nil
}

// PresignUpload issues a presigned PUT for a new file. The object key keeps
// the original extension so the content type stays guessable.
func (s *S3FileSource) PresignUpload(ctx context.Context, filename string) (*providers.PresignedUpload, error) {
	fileID := uuid.NewString()
	if ext := path.Ext(filename); ext != "" {
		fileID += ext
	}

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(fileID)),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to presign upload", err)
	}

	return &providers.PresignedUpload{
		FileID:    fileID,
		URL:       request.URL,
		Method:    request.Method,
		ExpiresAt: time.Now().UTC().Add(s.presignTTL),
	}, nil
}

func (s *S3FileSource) objectKey(fileID string) string {
	if s.prefix == "" {
		return fileID
	}
	return path.Join(s.prefix, fileID)
}
