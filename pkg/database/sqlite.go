package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied to every pooled connection. Foreign keys must be
// on for cascading deletes and for the schema migrator to accept the database.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_pragma=synchronous(NORMAL)",
}

func sqliteDSN(c Config) string {
	dsn := c.URL
	if dsn == "" {
		dsn = "file:" + filepath.ToSlash(filepath.Clean(c.Path))
	}

	var missing []string
	for _, p := range sqlitePragmas {
		name := p[:strings.Index(p, "(")]
		if !strings.Contains(dsn, name) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

func ensureSQLiteDir(c Config) error {
	if c.Path == "" {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
	}
	return nil
}
