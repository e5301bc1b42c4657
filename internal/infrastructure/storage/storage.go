package storage

import (
	"context"
	"fmt"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the document store selected by cfg.Driver
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (regapp.DocumentStorage, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3DocumentStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 document storage", zap.String("bucket", s.Bucket()))
		return s, nil
	case "local", "":
		logger.Info("Using local document storage", zap.String("dir", cfg.LocalDir))
		return NewLocalDocumentStorage(cfg.LocalDir, cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
