package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PROSPECT_TEST_VAR", "hello")
	t.Setenv("PROSPECT_EMPTY_VAR", "")

	cases := []struct {
		in   string
		want string
	}{
		{"value: ${PROSPECT_TEST_VAR}", "value: hello"},
		{"value: ${PROSPECT_MISSING_VAR}", "value: "},
		{"value: ${PROSPECT_MISSING_VAR:-fallback}", "value: fallback"},
		{"value: ${PROSPECT_EMPTY_VAR:-fallback}", "value: fallback"},
		{"value: ${PROSPECT_TEST_VAR:-fallback}", "value: hello"},
		{"plain text without vars", "plain text without vars"},
	}

	for _, tc := range cases {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("embedding model default: %q", cfg.Embedding.Model)
	}
	if cfg.Search.IndexName != "prospect:chunks:idx" || cfg.Search.KeyPrefix != "prospect:chunk:" {
		t.Errorf("index defaults: %q / %q", cfg.Search.IndexName, cfg.Search.KeyPrefix)
	}
	if cfg.Search.DefaultTopK != 10 || cfg.Search.DefaultThreshold != 0.3 {
		t.Errorf("search defaults: top_k=%d threshold=%v",
			cfg.Search.DefaultTopK, cfg.Search.DefaultThreshold)
	}
	if cfg.Search.SessionCacheSize != 256 {
		t.Errorf("session cache size default: %d", cfg.Search.SessionCacheSize)
	}
	if cfg.Detail.TimeoutMs != 5000 {
		t.Errorf("detail timeout default: %d", cfg.Detail.TimeoutMs)
	}
	if cfg.Query.DefaultLimit != 50 || cfg.Query.MaxLimit != 1000 {
		t.Errorf("query limits: %d / %d", cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Search.DefaultTopK = 25
	cfg.Detail.TimeoutMs = 100
	cfg.ApplyDefaults()

	if cfg.Search.DefaultTopK != 25 {
		t.Errorf("explicit top_k overwritten: %d", cfg.Search.DefaultTopK)
	}
	if cfg.Detail.TimeoutMs != 100 {
		t.Errorf("explicit timeout overwritten: %d", cfg.Detail.TimeoutMs)
	}
}

func validConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Redis.Addrs = []string{"localhost:6379"}
	cfg.Postgres.DSN = "postgres://localhost/prospect"
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := validConfig()
	bad.HTTP.Port = 0
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "http.port") {
		t.Errorf("port 0: %v", err)
	}

	bad = validConfig()
	bad.Redis.Addrs = nil
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "redis.addrs") {
		t.Errorf("missing addrs: %v", err)
	}

	bad = validConfig()
	bad.Postgres.DSN = ""
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "postgres.dsn") {
		t.Errorf("missing dsn: %v", err)
	}

	bad = validConfig()
	bad.Search.DefaultThreshold = 1.5
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "default_threshold") {
		t.Errorf("threshold > 1: %v", err)
	}

	bad = validConfig()
	bad.Query.DefaultLimit = 5000
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "default_limit") {
		t.Errorf("default limit above max: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: 9090
redis:
  addrs:
    - "localhost:6379"
  password: "${PROSPECT_TEST_REDIS_PASS:-secret}"
postgres:
  dsn: "postgres://localhost/prospect"
search:
  default_top_k: 7
`
	path := filepath.Join(dir, "config", "test.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port: %d", cfg.HTTP.Port)
	}
	if cfg.Redis.Password != "secret" {
		t.Errorf("env default not expanded: %q", cfg.Redis.Password)
	}
	if cfg.Search.DefaultTopK != 7 {
		t.Errorf("explicit top_k: %d", cfg.Search.DefaultTopK)
	}
	if cfg.Search.DefaultThreshold != 0.3 {
		t.Errorf("threshold default not applied: %v", cfg.Search.DefaultThreshold)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load("nope"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
