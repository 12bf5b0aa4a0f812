// Package blob selects a blob storage backend from the environment.
package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	"herdcore/internal/blob/core"
	"herdcore/internal/infra/blob/fs"
	"herdcore/internal/infra/blob/memory"
	"herdcore/internal/infra/blob/s3"
)

// Environment variables selecting and configuring the blob driver.
const (
	EnvDriver = "HERDCORE_BLOB_DRIVER"
	EnvFSRoot = "HERDCORE_BLOB_FS_ROOT"
)

// Open constructs the blob store named by EnvDriver. Unset or "fs" yields the
// filesystem store rooted at EnvFSRoot.
func Open(ctx context.Context) (core.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDriver)))
	switch driver {
	case "", string(core.DriverFilesystem):
		return fs.New(os.Getenv(EnvFSRoot))
	case string(core.DriverMemory):
		return memory.New(), nil
	case string(core.DriverS3):
		return s3.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", driver)
	}
}
