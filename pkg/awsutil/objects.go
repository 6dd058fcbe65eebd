package awsutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Downloader interface para Mock
type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Uploader interface para Mock
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client cria o client real do S3 (atende Downloader e Uploader).
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseS3URI separa "s3://bucket/path/key" em bucket e key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("URL S3 inválida: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("URL S3 inválida: %s", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// ReadObject baixa o objeto inteiro para memória.
func ReadObject(ctx context.Context, client S3Downloader, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar do S3: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// WriteObject envia um buffer completo como objeto (sem multipart/streaming).
func WriteObject(ctx context.Context, client S3Uploader, bucket, key, contentType string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("erro ao enviar para o S3: %w", err)
	}
	return nil
}
