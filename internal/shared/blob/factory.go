package blob

import (
	"context"
	"fmt"

	appconfig "inspections-server/internal/shared/config"
)

// Open selects a Store implementation from the blob configuration.
//
//	BLOB_DRIVER: fs|s3|memory (default fs)
//	BLOB_FS_ROOT: directory root when driver=fs
//	BLOB_PUBLIC_BASE_URL: base under which stored objects are served
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context, cfg appconfig.BlobConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot, cfg.PublicBaseURL)
	case DriverS3:
		return NewS3(ctx, cfg)
	case DriverMemory:
		return NewMemory(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
