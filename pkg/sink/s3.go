package sink

import (
	"context"
	"fmt"

	"github.com/raywall/fast-fetch-toolkit/pkg/awsutil"
)

// S3Writer serializa o lote completo e envia como um único objeto.
// Cada escrita substitui o objeto.
type S3Writer struct {
	client awsutil.S3Uploader
	bucket string
	key    string
	format string
	fields []string
}

func NewS3Writer(client awsutil.S3Uploader, bucket, key, format string, fields []string) *S3Writer {
	if format == "" {
		format = FormatCSV
	}
	return &S3Writer{client: client, bucket: bucket, key: key, format: format, fields: fields}
}

func (w *S3Writer) Write(ctx context.Context, recs []Record) error {
	data, contentType, err := Encode(w.format, w.fields, recs)
	if err != nil {
		return fmt.Errorf("erro ao serializar s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return awsutil.WriteObject(ctx, w.client, w.bucket, w.key, contentType, data)
}

func (w *S3Writer) Close() error { return nil }
