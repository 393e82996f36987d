package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestReadConfigFromFile(t *testing.T) {
	dir := writeConfig(t, `
discord:
  token: abc
  test_guild_id: "123"
database:
  driver: sqlite
  path: forms.db
redis:
  enabled: true
  addr: redis:6379
`)

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Discord.Token != "abc" {
		t.Errorf("Discord.Token = %q, want abc", cfg.Discord.Token)
	}
	if cfg.Discord.TestGuildID != "123" {
		t.Errorf("Discord.TestGuildID = %q, want 123", cfg.Discord.TestGuildID)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "forms.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Enrichment.BaseURL == "" {
		t.Error("Enrichment.BaseURL default not applied")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	t.Setenv("FORMS_DISCORD_TOKEN", "from-env")
	t.Setenv("FORMS_DATABASE_URL", "postgres://forms@localhost/forms")

	cfg, err := ReadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Discord.Token != "from-env" {
		t.Errorf("Discord.Token = %q, want from-env", cfg.Discord.Token)
	}
	if cfg.Database.URL != "postgres://forms@localhost/forms" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing token",
			cfg:     Config{Database: DatabaseConfig{Host: "localhost"}},
			wantErr: ErrMissingToken,
		},
		{
			name:    "postgres without host or url",
			cfg:     Config{Discord: DiscordConfig{Token: "t"}, Database: DatabaseConfig{Driver: "postgres"}},
			wantErr: ErrMissingDatabase,
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Discord: DiscordConfig{Token: "t"}, Database: DatabaseConfig{Driver: "sqlite"}},
			wantErr: ErrMissingDatabase,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Discord: DiscordConfig{Token: "t"}, Database: DatabaseConfig{Driver: "mysql"}},
			wantErr: ErrUnknownDriver,
		},
		{
			name: "valid postgres",
			cfg:  Config{Discord: DiscordConfig{Token: "t"}, Database: DatabaseConfig{Host: "db"}},
		},
		{
			name: "valid sqlite",
			cfg:  Config{Discord: DiscordConfig{Token: "t"}, Database: DatabaseConfig{Driver: "sqlite", Path: "x.db"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
