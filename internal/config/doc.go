// Package config provides configuration for the vmbase command.
//
// The configuration is stored in vmbase.json. Every field except the S3
// credentials may be set in the file; every field may be overridden from the
// environment with a VMBASE_ prefix.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "diagnostics": {
//	    "enabled": true,
//	    "captureStacks": false,
//	    "addr": "localhost:7070",
//	    "metricsNamespace": "vmbase"
//	  },
//	  "snapshot": {
//	    "bucket": "debug-dumps",
//	    "prefix": "vmbase/",
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000"
//	  }
//	}
//
// # Environment Overrides
//
//	VMBASE_LOG_LEVEL, VMBASE_LOG_FORMAT
//	VMBASE_DIAG_ENABLED, VMBASE_DIAG_CAPTURE_STACKS, VMBASE_DIAG_ADDR,
//	VMBASE_DIAG_METRICS_NAMESPACE
//	VMBASE_SNAPSHOT_BUCKET, VMBASE_SNAPSHOT_PREFIX, VMBASE_SNAPSHOT_REGION,
//	VMBASE_SNAPSHOT_ENDPOINT, VMBASE_SNAPSHOT_ACCESS_KEY_ID,
//	VMBASE_SNAPSHOT_SECRET_ACCESS_KEY, VMBASE_SNAPSHOT_SESSION_TOKEN
//
// # Usage
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    return err
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
