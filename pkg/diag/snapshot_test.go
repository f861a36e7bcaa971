package diag

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3ExporterExport(t *testing.T) {
	reg := NewRegistry()
	newAccountVM(&account{Owner: "ada"}, reg.Env(nil))

	put := &fakePutter{}
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	exp := NewS3Exporter(put, "debug", "vmbase/").WithClock(func() time.Time { return at })

	key, err := exp.Export(context.Background(), reg)
	if err != nil {
		t.Fatal(err)
	}

	if key != "vmbase/snapshot-20240301T123000.000Z.txt" {
		t.Errorf("key = %q", key)
	}
	if aws.ToString(put.input.Bucket) != "debug" || aws.ToString(put.input.Key) != key {
		t.Errorf("bucket/key = %q/%q", aws.ToString(put.input.Bucket), aws.ToString(put.input.Key))
	}
	if aws.ToInt64(put.input.ContentLength) != int64(len(put.body)) {
		t.Errorf("ContentLength = %d, body %d", aws.ToInt64(put.input.ContentLength), len(put.body))
	}
	if !strings.Contains(put.body, "ada") {
		t.Errorf("body = %s", put.body)
	}
}

func TestS3ExporterErrors(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("access denied")

	tests := []struct {
		name string
		exp  *S3Exporter
		code string
	}{
		{"nil exporter", nil, "E200"},
		{"no bucket", NewS3Exporter(&fakePutter{}, "", ""), "E200"},
		{"no client", NewS3Exporter(nil, "b", ""), "E200"},
		{"put fails", NewS3Exporter(&fakePutter{err: boom}, "b", ""), "E201"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.exp.Export(context.Background(), reg)
			if vmerrors.Code(err) != tt.code {
				t.Errorf("code = %q, want %q (err %v)", vmerrors.Code(err), tt.code, err)
			}
		})
	}

	_, err := NewS3Exporter(&fakePutter{err: boom}, "b", "").Export(context.Background(), reg)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapping %v", err, boom)
	}
}
