package dbal

// Drivers register themselves with the default registry.
import (
	_ "github.com/cybertec-postgresql/dbal/internal/driver/duckdb"
	_ "github.com/cybertec-postgresql/dbal/internal/driver/mysql"
	_ "github.com/cybertec-postgresql/dbal/internal/driver/pgx"
	_ "github.com/cybertec-postgresql/dbal/internal/driver/pq"
	_ "github.com/cybertec-postgresql/dbal/internal/driver/sqlite"
)
