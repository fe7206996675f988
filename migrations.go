package landregistrymap

import "embed"

// Migrations - SQL миграции goose
//
//go:embed migrations/*.sql
var Migrations embed.FS
