package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"credentialing/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the packet store calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, enables path-style addressing for MinIO and friends
}

// S3PacketStore keeps manifests under packets/{caseId}/ in one bucket.
type S3PacketStore struct {
	client S3API
	bucket string
}

func NewS3PacketStore(client S3API, bucket string) *S3PacketStore {
	return &S3PacketStore{client: client, bucket: bucket}
}

// NewS3PacketStoreFromConfig loads AWS credentials from the default chain.
func NewS3PacketStoreFromConfig(ctx context.Context, cfg S3Config) (*S3PacketStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 packet store requires a bucket")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3PacketStore(client, cfg.Bucket), nil
}

func (s *S3PacketStore) SavePacket(ctx context.Context, manifest *Manifest) (string, error) {
	data, err := json.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal packet manifest: %w", err)
	}

	key := fmt.Sprintf("packets/%s/%s.json", manifest.CaseID, utils.NanoID())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"case-id":          manifest.CaseID,
			"manifest-version": fmt.Sprint(manifest.ManifestVersion),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload packet manifest: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3PacketStore) objectKey(key string) string {
	return strings.TrimPrefix(key, fmt.Sprintf("s3://%s/", s.bucket))
}

func (s *S3PacketStore) LoadPacket(ctx context.Context, key string) (*Manifest, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrPacketNotFound
		}
		return nil, fmt.Errorf("failed to download packet manifest: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read packet manifest: %w", err)
	}

	manifest := new(Manifest)
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to decode packet manifest: %w", err)
	}

	return manifest, nil
}

// DeletePacket relies on S3 treating a missing key as a successful delete.
func (s *S3PacketStore) DeletePacket(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete packet manifest: %w", err)
	}
	return nil
}
