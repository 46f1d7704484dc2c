// Package s3 implements a seed source over an S3-compatible bucket.
package s3

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

// Config holds connection parameters. Credentials come from the default AWS
// chain unless HTTPClient-level overrides are used in tests.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	PathStyle bool
}

// Store reads and writes seed objects in a single bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates a store from cfg using the default AWS configuration chain.
func New(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.NotValidf("empty s3 bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Annotate(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Driver implements seedsource.Source.
func (s *Store) Driver() seedsource.Driver { return seedsource.DriverS3 }

// Open implements seedsource.Source.
func (s *Store) Open(ctx context.Context, key string) (seedsource.Info, io.ReadCloser, error) {
	clean, err := seedsource.CleanKey(key)
	if err != nil {
		return seedsource.Info{}, nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &clean})
	if isNotFound(err) {
		return seedsource.Info{}, nil, errors.NotFoundf("seed %q in bucket %s", key, s.bucket)
	}
	if err != nil {
		return seedsource.Info{}, nil, errors.Annotatef(err, "get s3://%s/%s", s.bucket, clean)
	}
	return infoFrom(clean, out.ContentLength, out.ContentType, out.ETag, out.LastModified), out.Body, nil
}

// Put implements seedsource.Source. Create-only is emulated with a HEAD
// request first.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (seedsource.Info, error) {
	clean, err := seedsource.CleanKey(key)
	if err != nil {
		return seedsource.Info{}, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &clean})
	if err == nil {
		return seedsource.Info{}, errors.AlreadyExistsf("seed %q in bucket %s", key, s.bucket)
	}
	if !isNotFound(err) {
		return seedsource.Info{}, errors.Annotatef(err, "head s3://%s/%s", s.bucket, clean)
	}
	if contentType == "" {
		contentType = seedsource.ContentTypeFor(clean)
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &clean,
		Body:        r,
		ContentType: aws.String(contentType),
	}); err != nil {
		return seedsource.Info{}, errors.Annotatef(err, "put s3://%s/%s", s.bucket, clean)
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &clean})
	if err != nil {
		return seedsource.Info{}, errors.Annotatef(err, "head s3://%s/%s", s.bucket, clean)
	}
	return infoFrom(clean, head.ContentLength, head.ContentType, head.ETag, head.LastModified), nil
}

// List implements seedsource.Source.
func (s *Store) List(ctx context.Context, prefix string) ([]seedsource.Info, error) {
	var (
		infos []seedsource.Info
		token *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &prefix, ContinuationToken: token})
		if err != nil {
			return nil, errors.Annotatef(err, "list s3://%s/%s", s.bucket, prefix)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			infos = append(infos, seedsource.Info{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				ContentType:  seedsource.ContentTypeFor(key),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

func infoFrom(key string, size *int64, contentType, etag *string, lastModified *time.Time) seedsource.Info {
	lm := time.Now().UTC()
	if lastModified != nil {
		lm = *lastModified
	}
	ct := aws.ToString(contentType)
	if ct == "" {
		ct = seedsource.ContentTypeFor(key)
	}
	return seedsource.Info{
		Key:          key,
		Size:         aws.ToInt64(size),
		ContentType:  ct,
		ETag:         strings.Trim(aws.ToString(etag), `"`),
		LastModified: lm,
	}
}
