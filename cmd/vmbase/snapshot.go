package main

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vmbase/internal/config"
	"github.com/vango-dev/vmbase/internal/demo"
	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/diag"
)

func snapshotCmd(a *app) *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Upload a registry dump to S3",
		Long: `Build the sample view model graph and upload a dump of the live
registry to the configured S3 bucket.

Credentials are read from VMBASE_SNAPSHOT_ACCESS_KEY_ID,
VMBASE_SNAPSHOT_SECRET_ACCESS_KEY and VMBASE_SNAPSHOT_SESSION_TOKEN.

Examples:
  vmbase snapshot --bucket=debug-dumps
  VMBASE_SNAPSHOT_ENDPOINT=http://localhost:9000 vmbase snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket != "" {
				a.cfg.Snapshot.Bucket = bucket
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if a.cfg.Snapshot.Bucket == "" {
				return vmerrors.New("E200").
					WithDetail("snapshot.bucket is empty")
			}
			exp := diag.NewS3Exporter(newS3Client(a.cfg.Snapshot), a.cfg.Snapshot.Bucket, a.cfg.Snapshot.Prefix)
			return a.snapshot(cmd.Context(), cmd.OutOrStdout(), exp)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket to upload to (default from config)")

	return cmd
}

// snapshot builds the sample graph, uploads its dump and disposes it.
func (a *app) snapshot(ctx context.Context, out io.Writer, exp *diag.S3Exporter) error {
	reg, env := a.registry()

	p := demo.NewPerson("Barbara", "Liskov")
	if err := p.SetAddress(demo.NewAddress("32 Vassar St", "Cambridge")); err != nil {
		return err
	}
	vm, err := demo.NewPersonVM(p, demo.NewSettings(), env)
	if err != nil {
		return err
	}
	defer vm.Dispose()
	vm.Address()

	key, err := exp.Export(ctx, reg)
	if err != nil {
		return err
	}
	success(out, "Uploaded %d view model(s) to %s", reg.Count(), key)
	return nil
}

func newS3Client(cfg config.SnapshotConfig) *s3.Client {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
			Source:          "vmbase environment",
		}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	}
	return s3.New(opts)
}
