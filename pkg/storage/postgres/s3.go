package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
)

const (
	avatarKeyPrefix  = "avatars/"
	metaFilename     = "filename"
	metaCreatedAt    = "created-at"
	metaUserNIP      = "user-nip"
	preconditionCode = "PreconditionFailed"
)

// s3API is the subset of the S3 client used by S3AvatarStore
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3AvatarStore keeps avatar images as raw objects under avatars/<nip>. The data
// URI form is rebuilt on read from the object's content type.
type S3AvatarStore struct {
	client s3API
	bucket string
	now    func() time.Time
}

var _ avatars.Store = (*S3AvatarStore)(nil)

// NewS3AvatarStore connects to the configured bucket, creating it if missing
func NewS3AvatarStore(ctx context.Context, cfg storage.Config) (*S3AvatarStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		// static keys for MinIO or explicit AWS credentials
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	if err := createBucketIfNotExists(ctx, client, cfg.S3Bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return newS3AvatarStore(client, cfg.S3Bucket), nil
}

func newS3AvatarStore(client s3API, bucket string) *S3AvatarStore {
	return &S3AvatarStore{client: client, bucket: bucket, now: time.Now}
}

func avatarKey(nip string) string {
	return avatarKeyPrefix + nip
}

func (s *S3AvatarStore) startSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, "S3."+op,
		trace.WithAttributes(
			attribute.String("s3.operation", op),
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", key),
		),
	)
}

func failSpan(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func (s *S3AvatarStore) Get(ctx context.Context, nip string) (*avatars.Avatar, error) {
	key := avatarKey(nip)
	ctx, span := s.startSpan(ctx, "GetObject", key)
	defer span.End()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			span.SetStatus(codes.Ok, "avatar not found")
			return nil, storage.ErrNotFound
		}
		failSpan(span, err, "failed to get avatar")
		return nil, fmt.Errorf("failed to get avatar object: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		failSpan(span, err, "failed to read avatar")
		return nil, fmt.Errorf("failed to read avatar object: %w", err)
	}
	span.SetAttributes(attribute.Int("content.size", len(content)))

	mimeType := aws.ToString(out.ContentType)
	avatar := &avatars.Avatar{
		UserNIP:  nip,
		Filename: out.Metadata[metaFilename],
		MimeType: mimeType,
		Data:     avatars.EncodeDataURI(mimeType, content),
	}
	if out.LastModified != nil {
		avatar.UpdatedAt = *out.LastModified
	}
	avatar.CreatedAt = parseCreatedAt(out.Metadata, avatar.UpdatedAt)

	span.SetStatus(codes.Ok, "avatar retrieved")
	return avatar, nil
}

// Create writes the object only if none exists for the user
func (s *S3AvatarStore) Create(ctx context.Context, a *avatars.Avatar) error {
	key := avatarKey(a.UserNIP)
	ctx, span := s.startSpan(ctx, "PutObject", key)
	defer span.End()

	now := s.now().UTC()
	if err := s.put(ctx, key, a, now, aws.String("*")); err != nil {
		if isPreconditionFailed(err) {
			span.SetStatus(codes.Ok, "avatar already exists")
			return fmt.Errorf("avatar for %s: %w", a.UserNIP, storage.ErrConflict)
		}
		failSpan(span, err, "failed to store avatar")
		return err
	}

	a.CreatedAt, a.UpdatedAt = now, now
	span.SetStatus(codes.Ok, "avatar stored")
	return nil
}

// Replace overwrites an existing avatar, keeping its creation time
func (s *S3AvatarStore) Replace(ctx context.Context, a *avatars.Avatar) error {
	key := avatarKey(a.UserNIP)
	ctx, span := s.startSpan(ctx, "ReplaceObject", key)
	defer span.End()

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			span.SetStatus(codes.Ok, "avatar not found")
			return storage.ErrNotFound
		}
		failSpan(span, err, "failed to check avatar")
		return fmt.Errorf("failed to check avatar object: %w", err)
	}

	now := s.now().UTC()
	created := parseCreatedAt(head.Metadata, now)
	if err := s.put(ctx, key, &avatars.Avatar{
		UserNIP:   a.UserNIP,
		Filename:  a.Filename,
		MimeType:  a.MimeType,
		Data:      a.Data,
		CreatedAt: created,
	}, created, nil); err != nil {
		failSpan(span, err, "failed to replace avatar")
		return err
	}

	a.CreatedAt, a.UpdatedAt = created, now
	span.SetStatus(codes.Ok, "avatar replaced")
	return nil
}

func (s *S3AvatarStore) Delete(ctx context.Context, nip string) error {
	key := avatarKey(nip)
	ctx, span := s.startSpan(ctx, "DeleteObject", key)
	defer span.End()

	// S3 deletes are idempotent, so existence is checked first
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			span.SetStatus(codes.Ok, "avatar not found")
			return storage.ErrNotFound
		}
		failSpan(span, err, "failed to check avatar")
		return fmt.Errorf("failed to check avatar object: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		failSpan(span, err, "failed to delete avatar")
		return fmt.Errorf("failed to delete avatar object: %w", err)
	}

	span.SetStatus(codes.Ok, "avatar deleted")
	return nil
}

// HealthCheck verifies the bucket is reachable
func (s *S3AvatarStore) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

func (s *S3AvatarStore) put(ctx context.Context, key string, a *avatars.Avatar, created time.Time, ifNoneMatch *string) error {
	mimeType, content, err := avatars.DecodeDataURI(a.Data)
	if err != nil {
		return fmt.Errorf("failed to decode avatar data: %w", err)
	}
	if mimeType == "" {
		mimeType = a.MimeType
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(mimeType),
		IfNoneMatch:   ifNoneMatch,
		Metadata: map[string]string{
			metaFilename:  a.Filename,
			metaUserNIP:   a.UserNIP,
			metaCreatedAt: created.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload avatar object: %w", err)
	}
	return nil
}

func parseCreatedAt(meta map[string]string, fallback time.Time) time.Time {
	if v, ok := meta[metaCreatedAt]; ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return fallback
}

func createBucketIfNotExists(ctx context.Context, client s3API, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}

	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == preconditionCode {
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}
