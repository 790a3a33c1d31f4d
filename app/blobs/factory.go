package blobs

import (
	"context"
	"fmt"

	"yatube/app/config"
)

// NewStoreFromConfig creates a Store implementation based on the images config type.
func NewStoreFromConfig(ctx context.Context, cfg config.ImagesConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem image store requires root to be set")
		}
		return NewFileSystem(cfg.Root)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown image store type: %s", cfg.Type)
	}
}
