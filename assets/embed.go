// Package assets embeds the default character roster and the SQL migrations
// so the server runs without any files next to the binary.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed roster.yaml sql/*.sql
var FS embed.FS

// Migration is one embedded SQL script, named by its file path.
type Migration struct {
	Name string
	SQL  string
}

// Roster returns the raw YAML of the embedded roster.
func Roster() ([]byte, error) {
	return FS.ReadFile("roster.yaml")
}

// Migrations returns the embedded sql/*.sql scripts in lexical order.
func Migrations() ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(FS, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		b, err := FS.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, Migration{Name: path, SQL: string(b)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
