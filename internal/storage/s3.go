package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const AvatarFolder = "avatars"

var ErrNotConfigured = errors.New("stockage S3 non configuré")

var s3Client *s3.Client
var s3Bucket string
var s3Region string

func InitS3(bucket, region, accessKey, secretKey string) error {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("chargement config AWS: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	s3Bucket = bucket
	s3Region = region
	return nil
}

func Enabled() bool {
	return s3Client != nil
}

// PublicURL is the address an object key is served from.
func PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s3Bucket, s3Region, key)
}

// KeyFromURL reverses PublicURL; ok is false for URLs outside the bucket.
func KeyFromURL(url string) (string, bool) {
	prefix := PublicURL("")
	if s3Bucket == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func Upload(ctx context.Context, body io.Reader, filename, contentType, folder string) (string, error) {
	if s3Client == nil {
		return "", ErrNotConfigured
	}
	key := fmt.Sprintf("%s/%s", folder, filename)

	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload échoué: %w", err)
	}
	return PublicURL(key), nil
}

func Delete(ctx context.Context, key string) error {
	if s3Client == nil {
		return ErrNotConfigured
	}
	_, err := s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("erreur suppression S3 : %w", err)
	}
	return nil
}
