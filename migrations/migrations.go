// Package migrations embeds the SQL that prepares a backend project: the
// notes and notebooks tables with row level security.
package migrations

import "embed"

//go:embed baas/*.sql
var BaaS embed.FS
