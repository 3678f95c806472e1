package s3export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Client is the subset of the S3 API the exporter needs.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter uploads rendered report views as JSON objects.
type Exporter struct {
	client Client
	bucket string
	prefix string
	now    func() time.Time
}

func New(client Client, bucket, prefix string) (*Exporter, error) {
	if client == nil {
		return nil, errors.New("s3 client is nil")
	}
	if bucket == "" {
		return nil, errors.New("export bucket is not configured")
	}
	return &Exporter{client: client, bucket: bucket, prefix: prefix, now: time.Now}, nil
}

func NewFromConfig(cfg awssdk.Config, bucket, prefix string) (*Exporter, error) {
	return New(s3.NewFromConfig(cfg), bucket, prefix)
}

// Key is <prefix>/<profile>/<page>/<current>_vs_<comparison>_<timestamp>.json.
func (e *Exporter) Key(profile, page string, report api.Report) string {
	name := fmt.Sprintf("%s_%s_vs_%s_%s_%s.json",
		report.Current.Start, report.Current.End,
		report.Comparison.Start, report.Comparison.End,
		e.now().UTC().Format("20060102T150405Z"))
	return path.Join(e.prefix, profile, page, name)
}

// Export writes report to the bucket and returns the object key.
func (e *Exporter) Export(ctx context.Context, profile, page string, report api.Report) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := e.Key(profile, page, report)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(e.bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(body),
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", e.bucket, key, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("bytes", len(body)).
		Msg("report exported")
	return key, nil
}
