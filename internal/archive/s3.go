// Package archive writes the final standings of concluded years to S3
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

// ErrNoBucket is returned when archiving is enabled without a bucket
var ErrNoBucket = errors.New("archive bucket not configured")

// Uploader is the subset of the S3 client used by the archiver
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Standings is the document stored for a concluded year
type Standings struct {
	Year        int                 `json:"year"`
	ArchivedAt  time.Time           `json:"archived_at"`
	Leaderboard *domain.Leaderboard `json:"leaderboard"`
}

// S3Archiver stores yearly standings as JSON objects
type S3Archiver struct {
	client Uploader
	bucket string
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// NewS3Archiver builds an archiver from the default AWS credential chain
func NewS3Archiver(ctx context.Context, cfg *config.ArchiveConfig, logger *slog.Logger) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		options.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info("s3 archive configured", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewWithClient creates an archiver around an existing client
func NewWithClient(client Uploader, bucket, prefix string, logger *slog.Logger) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		logger: logger,
	}
}

// ObjectKey returns the key the standings of year are stored under
func (a *S3Archiver) ObjectKey(year int) string {
	return path.Join(a.prefix, fmt.Sprintf("%d.json", year))
}

// ArchiveStandings uploads the final leaderboard of year and returns its key
func (a *S3Archiver) ArchiveStandings(ctx context.Context, year int, lb *domain.Leaderboard) (string, error) {
	body, err := json.MarshalIndent(Standings{
		Year:        year,
		ArchivedAt:  a.now().UTC(),
		Leaderboard: lb,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding standings: %w", err)
	}

	key := a.ObjectKey(year)
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	a.logger.Info("archived standings", "year", year, "key", key, "rows", len(lb.Rows))
	return key, nil
}
