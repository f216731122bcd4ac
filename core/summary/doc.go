// Package summary persists closed simulation days so they can be queried after
// a run. Backends: in-memory, rotating JSONL file (lumberjack), SQLite and
// PostgreSQL.
package summary
