package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"kinbrio/internal/pkg/errs"
	"kinbrio/internal/pkg/logx"
)

// ErrObjectNotFound is returned when a bucket or object does not exist.
var ErrObjectNotFound = errs.WithKind(errs.KindNotFound, errors.New("storage: object not found"))

// s3Client implements StorageService against S3-compatible storage.
type s3Client struct {
	s3Client *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
}

// newS3Client initializes the S3 client with a custom, path-style endpoint.
func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	region := cfg.S3Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client configuration: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return &s3Client{
		s3Client: client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
	}, nil
}

func (c *s3Client) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &bucket})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return upstream("head bucket", bucket, err)
	}

	_, err = c.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return upstream("create bucket", bucket, err)
	}
	logx.Info("Bucket created", "bucket", bucket)
	return nil
}

func (c *s3Client) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return upstream("upload", bucket+"/"+key, err)
	}
	return nil
}

func (c *s3Client) Download(ctx context.Context, bucket, key string) (*Object, error) {
	resp, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, upstream("download", bucket+"/"+key, err)
	}
	return &Object{
		Body:          resp.Body,
		ContentType:   aws.ToString(resp.ContentType),
		ContentLength: aws.ToInt64(resp.ContentLength),
	}, nil
}

func (c *s3Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}
		return upstream("delete", bucket+"/"+key, err)
	}
	return nil
}

// PresignDownload generates a presigned URL for downloading the specified object.
func (c *s3Client) PresignDownload(ctx context.Context, bucket, key string, duration time.Duration) (string, error) {
	resp, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", upstream("presign download", bucket+"/"+key, err)
	}
	return resp.URL, nil
}

// isNotFound matches the typed and the generic not-found errors S3-compatible servers return.
func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	if errors.As(err, &nf) || errors.As(err, &nsk) || errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

func upstream(op, target string, err error) error {
	return errs.WithKind(errs.KindUpstream, fmt.Errorf("storage: %s %s: %w", op, target, err))
}
