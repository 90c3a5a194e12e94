package db

import "database/sql"

// DB wraps the sql connection pool so stores share one dependency type.
type DB struct {
	*sql.DB
}
