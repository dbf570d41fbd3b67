package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the exporter uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is the document written by an export.
type Snapshot struct {
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
	Quotes     []Quote   `json:"quotes"`
}

// S3Exporter writes quote snapshots to an S3 bucket.
//
// Example usage:
//
//	client := quote.NewS3Client(quote.S3Config{Region: "us-east-1"})
//	exp := quote.NewS3Exporter(client, "my-bucket", "quotes/")
//	key, err := exp.Export(ctx, quotes)
type S3Exporter struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Exporter returns an exporter writing under prefix in bucket.
func NewS3Exporter(client PutObjectAPI, bucket, prefix string) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Export uploads quotes as one JSON snapshot and returns its object key.
func (e *S3Exporter) Export(ctx context.Context, quotes []Quote) (string, error) {
	if e.bucket == "" {
		return "", fmt.Errorf("quote: export bucket is not set")
	}
	if quotes == nil {
		quotes = []Quote{}
	}
	at := e.now().UTC()
	body, err := json.MarshalIndent(Snapshot{ExportedAt: at, Count: len(quotes), Quotes: quotes}, "", "  ")
	if err != nil {
		return "", err
	}

	key := e.prefix + at.Format("20060102T150405Z") + ".json"
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"quote-count": fmt.Sprint(len(quotes)),
			"export-time": at.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return key, nil
}

// S3Config selects the S3 endpoint an exporter talks to.
type S3Config struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewS3Client builds an S3 client from cfg. Credentials come from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(ctx context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("quote: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
