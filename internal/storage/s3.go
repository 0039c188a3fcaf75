package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"

	"github.com/socialcosmos/backend/internal/config"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Backend stores each collection as a single object in an S3-compatible bucket.
type S3Backend struct {
	client   objectGetter
	uploader objectUploader
	bucket   string
	prefix   string
	breaker  *gobreaker.CircuitBreaker
}

// NewS3Backend configures a client and uploader targeting the provided object store.
func NewS3Backend(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Backend, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return newS3Backend(client, uploader, cfg), nil
}

func newS3Backend(client objectGetter, uploader objectUploader, cfg config.ObjectStoreConfig) *S3Backend {
	return &S3Backend{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		breaker:  newBreaker("s3:"+cfg.Bucket, cfg.BreakerTimeout),
	}
}

func newBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotExist) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("object store breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Load downloads the collection object.
func (b *S3Backend) Load(ctx context.Context, collection string) ([]byte, error) {
	key := b.key(collection)
	out, err := b.breaker.Execute(func() (interface{}, error) {
		obj, err := b.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var noSuchKey *s3types.NoSuchKey
			if errors.As(err, &noSuchKey) {
				return nil, ErrNotExist
			}
			return nil, fmt.Errorf("s3 storage get %s: %w", key, err)
		}
		defer obj.Body.Close()

		data, err := io.ReadAll(obj.Body)
		if err != nil {
			return nil, fmt.Errorf("s3 storage read %s: %w", key, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// Save uploads the full collection document, replacing the previous object.
func (b *S3Backend) Save(ctx context.Context, collection string, document []byte) error {
	key := b.key(collection)
	_, err := b.breaker.Execute(func() (interface{}, error) {
		_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(b.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(document),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage upload %s: %w", key, err)
		}
		return nil, nil
	})
	return err
}

func (b *S3Backend) key(collection string) string {
	name := collection + ".json"
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

var _ Backend = (*S3Backend)(nil)
