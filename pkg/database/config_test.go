package database

import (
	"strings"
	"testing"
)

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "postgres from fields",
			cfg:  Config{Host: "db", Port: 5432, User: "forms", Password: "secret", DBName: "forms", SSLMode: "disable"},
			want: []string{"host=db", "port=5432", "user=forms", "dbname=forms", "sslmode=disable"},
		},
		{
			name: "postgres url wins",
			cfg:  Config{Driver: "postgres", URL: "postgres://forms@db/forms", Host: "ignored"},
			want: []string{"postgres://forms@db/forms"},
		},
		{
			name: "sqlite path gets pragmas",
			cfg:  Config{Driver: "sqlite", Path: "data/forms.db"},
			want: []string{"file:data/forms.db?", "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"},
		},
		{
			name: "sqlite url keeps explicit pragma",
			cfg:  Config{Driver: "sqlite3", URL: "file:x.db?_pragma=foreign_keys(1)"},
			want: []string{"file:x.db?_pragma=foreign_keys(1)&", "_pragma=journal_mode(WAL)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.cfg.DSN()
			for _, w := range tt.want {
				if !strings.Contains(dsn, w) {
					t.Errorf("DSN() = %q, want it to contain %q", dsn, w)
				}
			}
		})
	}
}

func TestSQLiteDSNDoesNotDuplicatePragmas(t *testing.T) {
	dsn := Config{Driver: "sqlite", URL: "file:x.db?_pragma=foreign_keys(1)"}.DSN()
	if n := strings.Count(dsn, "foreign_keys"); n != 1 {
		t.Errorf("foreign_keys appears %d times in %q", n, dsn)
	}
}

func TestNormalizedDriver(t *testing.T) {
	tests := map[string]string{
		"":         DriverPostgres,
		"postgres": DriverPostgres,
		"SQLite":   DriverSQLite,
		"sqlite3":  DriverSQLite,
	}
	for in, want := range tests {
		if got := (Config{Driver: in}).NormalizedDriver(); got != want {
			t.Errorf("NormalizedDriver(%q) = %q, want %q", in, got, want)
		}
	}
}
