// Package all wires every built-in storage backend into the storage
// factory.
//
// The package exists purely for side effects: importing it (even blank)
// runs each backend's init, which registers its factory with the storage
// package. A binary importing this package can open any of:
//
//   - "postgres" (cleanse/internal/storage/postgres)
//   - "sqlite"   (cleanse/internal/storage/sqlite)
//   - "mysql"    (cleanse/internal/storage/mysql)
//   - "mssql"    (cleanse/internal/storage/mssql)
//
// Binaries that want a subset can blank-import individual backends
// instead.
package all

import (
	_ "cleanse/internal/storage/mssql"
	_ "cleanse/internal/storage/mysql"
	_ "cleanse/internal/storage/postgres"
	_ "cleanse/internal/storage/sqlite"
)
