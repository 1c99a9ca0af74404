// Package migrations embebe el esquema SQL versionado con goose.
package migrations

import "embed"

// FS contiene los archivos NNNNN_*.sql; cmd/migrate y los tests de integración lo usan
// con goose.SetBaseFS.
//
//go:embed *.sql
var FS embed.FS
