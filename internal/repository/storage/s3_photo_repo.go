package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	cfg "github.com/granaevo/granaevo-backend/internal/config"
)

// S3PhotoRepository implements PhotoRepository using AWS S3 or any
// S3-compatible endpoint
type S3PhotoRepository struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewS3PhotoRepository creates the repository and makes sure the bucket exists
func NewS3PhotoRepository(ctx context.Context, s3cfg cfg.S3Config) (*S3PhotoRepository, error) {
	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	// Load AWS config
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional endpoint override for MinIO/LocalStack
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	repo := newS3PhotoRepository(client, s3cfg.Bucket)
	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func newS3PhotoRepository(client *s3.Client, bucket string) *S3PhotoRepository {
	return &S3PhotoRepository{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

// ensureBucket creates the bucket if it doesn't exist. The bucket stays private.
func (r *S3PhotoRepository) ensureBucket(ctx context.Context) error {
	// Check if bucket exists
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil // Bucket exists and we have access
	}

	if !isBucketMissing(err) {
		return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

func isBucketMissing(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) || errors.As(err, &noSuchBucket)
}

// UploadProfilePhoto stores the encoded avatar under a new key of the
// profile and returns the key (not a URL)
func (r *S3PhotoRepository) UploadProfilePhoto(ctx context.Context, accountID uuid.UUID, profileID int32, jpeg []byte) (string, error) {
	key := photoKey(accountID, profileID, uuid.New())
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(jpeg),
		ContentType:   aws.String("image/jpeg"),
		ContentLength: aws.Int64(int64(len(jpeg))),
		CacheControl:  aws.String("private, max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

// DeleteProfilePhoto removes a photo of the account
func (r *S3PhotoRepository) DeleteProfilePhoto(ctx context.Context, accountID uuid.UUID, key string) error {
	if err := checkOwner(key, accountID); err != nil {
		return err
	}
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// PresignProfilePhoto generates a presigned GET URL for temporary access
func (r *S3PhotoRepository) PresignProfilePhoto(ctx context.Context, accountID uuid.UUID, key string, expiry time.Duration) (string, error) {
	if err := checkOwner(key, accountID); err != nil {
		return "", err
	}
	presignedReq, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}
