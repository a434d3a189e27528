// Package migrations embeds and applies the schema of the ledger (PostgreSQL)
// and of the price history (ClickHouse).
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// PostgresFS holds the ledger schema: launches and consumed trades.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the price history schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

type migration struct {
	name string
	body string
}

// load returns the non-empty .sql files of dir sorted by name.
func load(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, migration{name: e.Name(), body: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}
