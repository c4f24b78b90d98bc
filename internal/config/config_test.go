package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "local" || cfg.Records.Driver != "blob" {
		t.Errorf("drivers = %s/%s, want local/blob", cfg.Storage.Driver, cfg.Records.Driver)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes(), 32<<20)
	}
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  readTimeout: 30s
storage:
  driver: memory
records:
  driver: postgres
database:
  host: db
  port: 5432
  user: app
  password: secret
  name: books
limits:
  maxUploadMB: 0
cors:
  allowedOrigins: ["https://example.com"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	// untouched keys keep their defaults
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("WriteTimeout = %v, want 15s", cfg.Server.WriteTimeout)
	}
	if cfg.MaxUploadBytes() != 0 {
		t.Errorf("MaxUploadBytes = %d, want 0", cfg.MaxUploadBytes())
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}

	want := "host=db port=5432 user=app password=secret dbname=books sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
	if got := cfg.MySQLDSN(); !strings.HasPrefix(got, "app:secret@tcp(db:5432)/books?parseTime=true") {
		t.Errorf("MySQLDSN = %q", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOOKLENS_PORT", "7070")
	t.Setenv("BOOKLENS_RECORDS_DRIVER", "sqlite")
	t.Setenv("BOOKLENS_SQLITE_PATH", "/var/lib/booklens/x.db")
	t.Setenv("BOOKLENS_UPLOAD_DIR", "/srv/uploads")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Records.Driver != "sqlite" || cfg.Records.SQLitePath != "/var/lib/booklens/x.db" {
		t.Errorf("records = %+v", cfg.Records)
	}
	if cfg.Storage.UploadDir != "/srv/uploads" {
		t.Errorf("UploadDir = %q, want /srv/uploads", cfg.Storage.UploadDir)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown storage":  "storage:\n  driver: ftp\n",
		"unknown records":  "records:\n  driver: redis\n",
		"mysql needs host": "records:\n  driver: mysql\n",
		"minio needs host": "storage:\n  driver: minio\n",
		"negative cap":     "limits:\n  maxUploadMB: -1\n",
		"broken yaml":      "server: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: Load succeeded, want error", name)
		}
	}

	t.Setenv("BOOKLENS_PORT", "eighty")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Error("non-numeric BOOKLENS_PORT: Load succeeded, want error")
	}
}
