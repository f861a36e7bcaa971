package diag

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
)

// ObjectPutter is the subset of *s3.Client used by S3Exporter.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads registry dumps to an S3 bucket.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1"})
//	exp := diag.NewS3Exporter(client, "debug-bucket", "vmbase/")
//	key, err := exp.Export(ctx, reg)
type S3Exporter struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Exporter creates an exporter writing objects under prefix in bucket.
func NewS3Exporter(client ObjectPutter, bucket, prefix string) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// WithClock replaces time.Now for object key generation.
func (e *S3Exporter) WithClock(now func() time.Time) *S3Exporter {
	e.now = now
	return e
}

// Key returns the object key a snapshot taken at t is stored under.
func (e *S3Exporter) Key(t time.Time) string {
	return e.prefix + "snapshot-" + t.UTC().Format("20060102T150405.000Z") + ".txt"
}

// Export dumps reg and uploads it. It returns the object key.
func (e *S3Exporter) Export(ctx context.Context, reg *Registry) (string, error) {
	if e == nil || e.client == nil || e.bucket == "" {
		return "", vmerrors.New("E200").WithDetail("no bucket or client configured")
	}

	var buf bytes.Buffer
	if err := reg.Dump(&buf); err != nil {
		return "", vmerrors.New("E201").WithDetail("dump failed").Wrap(err)
	}

	key := e.Key(e.now())
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String("text/plain; charset=utf-8"),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	if err != nil {
		return "", vmerrors.New("E201").WithDetailf("put s3://%s/%s", e.bucket, key).Wrap(err)
	}
	return key, nil
}
