package core

import (
	"fmt"
	"os"
	"strings"

	"herdcore/internal/infra/persistence/memory"
	"herdcore/internal/infra/persistence/postgres"
	"herdcore/internal/infra/persistence/sqlite"
	"herdcore/pkg/domain"
)

// Environment variables selecting and configuring the persistence driver.
const (
	EnvStorageDriver = "HERDCORE_STORAGE_DRIVER"
	EnvSQLitePath    = "HERDCORE_SQLITE_PATH"
	EnvPostgresDSN   = "HERDCORE_POSTGRES_DSN"
)

// OpenPersistentStore selects a persistence backend from the environment.
// Unset or "memory" yields the in-memory store; "sqlite" and "postgres"
// return their durable counterparts configured from EnvSQLitePath and
// EnvPostgresDSN respectively.
func OpenPersistentStore(engine *domain.RulesEngine) (domain.PersistentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case "", "memory":
		return memory.NewStore(engine), nil
	case "sqlite":
		return sqlite.NewStore(os.Getenv(EnvSQLitePath), engine)
	case "postgres":
		return postgres.NewStore(os.Getenv(EnvPostgresDSN), engine)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
