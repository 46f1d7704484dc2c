package seed

import (
	"context"

	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
	seedfs "recordhub/internal/infra/seedsource/fs"
	seedmemory "recordhub/internal/infra/seedsource/memory"
	seeds3 "recordhub/internal/infra/seedsource/s3"
)

// SourceConfig selects and configures a seed source.
type SourceConfig struct {
	Driver      seedsource.Driver
	Root        string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// OpenSource builds the configured source. DriverNone (or an empty driver)
// returns a nil source and no error.
func OpenSource(ctx context.Context, cfg SourceConfig) (seedsource.Source, error) {
	switch cfg.Driver {
	case "", seedsource.DriverNone:
		return nil, nil
	case seedsource.DriverFilesystem:
		store, err := seedfs.New(cfg.Root)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return store, nil
	case seedsource.DriverMemory:
		return seedmemory.New(), nil
	case seedsource.DriverS3:
		store, err := seeds3.New(ctx, seeds3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return store, nil
	}
	return nil, errors.NotValidf("seed driver %q", cfg.Driver)
}
