// Package s3tape maps object storage classes of an S3-compatible archive
// bucket onto disk/tape locality.
package s3tape

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/newthinker/stagestate/internal/backend"
	"github.com/newthinker/stagestate/internal/core"
)

// Config holds S3 connection configuration
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Tape implements backend.Client for tape-tiered S3 buckets
type S3Tape struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a new S3 backend client
func New(cfg Config) (*S3Tape, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true // Required for MinIO and most S3-compatible services
	}

	return &S3Tape{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Tape) Name() string {
	return "s3"
}

// key maps a namespace path to an object key below the configured prefix
func (s *S3Tape) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Tape) GetXattr(ctx context.Context, surl, key string) (string, error) {
	if key != core.AttrStatus {
		return "", backend.Unsupported(s.Name(), key)
	}

	path, err := backend.NamespacePath(surl)
	if err != nil {
		return "", err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return "", fmt.Errorf("head object %s: %w", s.key(path), err)
	}

	return string(locality(out.StorageClass, aws.ToString(out.Restore))), nil
}

// locality classifies an object. Archive tiers are tape; a finished
// restore puts a temporary disk copy next to it.
func locality(class types.StorageClass, restore string) core.Status {
	switch class {
	case types.StorageClassGlacier, types.StorageClassDeepArchive:
		if strings.Contains(restore, `ongoing-request="false"`) {
			return core.StatusOnlineAndNearline
		}
		return core.StatusNearline
	default:
		return core.StatusOnline
	}
}
