package sqlite

import "database/sql"

// DB exposes the handle for pragma assertions.
func (s *Store) DB() *sql.DB { return s.db }
