// Package migrations carries the embedded schema for both stores: the
// PostgreSQL bookkeeping tables and the ClickHouse swap archive.
package migrations

import "embed"

// PostgresFS holds the PostgreSQL schema files, applied in lexical order.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the ClickHouse schema files, applied in lexical order.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
