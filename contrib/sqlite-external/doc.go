// Package sqliteexternal registers the CGO SQLite driver (mattn/go-sqlite3)
// for builds that opt into it.
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Without the tag the table store uses modernc.org/sqlite, which needs no C
// toolchain and cross-compiles. See core/sqlite.
package sqliteexternal
