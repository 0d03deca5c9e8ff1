package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stahnma/gh-repometa/internal/format"
)

// DateLayout fills the %s of an object key template.
const DateLayout = "2006-Jan-02"

// PutObjectAPI is the part of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads JSON objects to a bucket.
type S3Sink struct {
	Client PutObjectAPI
	Bucket string
	// Key may contain one %s, replaced by the upload date. Empty means the
	// destination name is used as the key.
	Key string
	Now func() time.Time
}

// NewS3Sink loads the default AWS configuration for region.
func NewS3Sink(ctx context.Context, region, bucket, key string) (*S3Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME must be set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Sink{Client: s3.NewFromConfig(cfg), Bucket: bucket, Key: key, Now: time.Now}, nil
}

// ObjectKey returns the key an object named name is stored under.
func (s *S3Sink) ObjectKey(name string) string {
	switch {
	case s.Key == "":
		return name
	case strings.Contains(s.Key, "%s"):
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		return fmt.Sprintf(s.Key, now().Format(DateLayout))
	default:
		return s.Key
	}
}

func (s *S3Sink) Save(ctx context.Context, name string, v any) error {
	data, err := format.MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	key := s.ObjectKey(name)
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}
