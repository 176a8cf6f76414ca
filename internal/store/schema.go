package store

// schema creates the store tables. Times are Unix nanoseconds in UTC; a NULL
// time_until marks the open version of a table.
const schema = `
CREATE TABLE IF NOT EXISTS collation_tables (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS ct_versions (
	id              TEXT PRIMARY KEY,
	table_id        TEXT NOT NULL REFERENCES collation_tables(id),
	time_from       INTEGER NOT NULL,
	time_until      INTEGER,
	snapshot_sha256 TEXT NOT NULL,
	snapshot_blake3 TEXT NOT NULL,
	author          TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ct_versions_table ON ct_versions(table_id, time_from);
`
