package migrations

import "embed"

// FS embeds SQL migration files for both storage drivers. Each driver reads
// its own subdirectory through the golang-migrate iofs source.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Version is the schema version the application expects.
const Version = 1
