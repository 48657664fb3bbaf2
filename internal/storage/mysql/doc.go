// Package mysql provides asset repositories backed by MySQL, plus a
// JSON-file-backed in-memory variant for local development. It owns the
// asset and transaction tables and the aggregate statistics queries.
package mysql
