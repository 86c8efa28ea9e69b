// Package migrations embebe el esquema SQL versionado que aplica goose al arrancar.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
