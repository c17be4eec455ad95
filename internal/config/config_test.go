package config

import (
	"testing"
	"time"

	"github.com/akruglov/footsync/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "footsync" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
	if cfg.WorkerCount != 8 {
		t.Fatalf("unexpected WorkerCount: %d", cfg.WorkerCount)
	}
	if cfg.Fotmob.BaseURL != "https://www.fotmob.com/api" {
		t.Fatalf("unexpected Fotmob.BaseURL: %q", cfg.Fotmob.BaseURL)
	}
	if cfg.Fotmob.Timeout != 20*time.Second {
		t.Fatalf("unexpected Fotmob.Timeout: %s", cfg.Fotmob.Timeout)
	}
	if !cfg.Championat.CircuitEnabled {
		t.Fatalf("expected circuit breaker enabled by default")
	}
	if cfg.RunOnStart {
		t.Fatalf("expected RunOnStart=false by default")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_SourceOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("TRANSFERMARKT_BASE_URL", "https://www.transfermarkt.de")
	t.Setenv("TRANSFERMARKT_TIMEOUT", "45s")
	t.Setenv("TRANSFERMARKT_MAX_RETRIES", "4")
	t.Setenv("TRANSFERMARKT_RETRY_DELAY", "5s")
	t.Setenv("TRANSFERMARKT_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transfermarkt.BaseURL != "https://www.transfermarkt.de" {
		t.Fatalf("unexpected BaseURL: %q", cfg.Transfermarkt.BaseURL)
	}
	if cfg.Transfermarkt.Timeout != 45*time.Second {
		t.Fatalf("unexpected Timeout: %s", cfg.Transfermarkt.Timeout)
	}
	if cfg.Transfermarkt.MaxRetries != 4 {
		t.Fatalf("unexpected MaxRetries: %d", cfg.Transfermarkt.MaxRetries)
	}
	if cfg.Transfermarkt.RetryDelay != 5*time.Second {
		t.Fatalf("unexpected RetryDelay: %s", cfg.Transfermarkt.RetryDelay)
	}
	if cfg.Transfermarkt.CircuitFailureCount != 3 {
		t.Fatalf("unexpected CircuitFailureCount: %d", cfg.Transfermarkt.CircuitFailureCount)
	}
	// Other sources keep their defaults.
	if cfg.Fotmob.MaxRetries != 2 {
		t.Fatalf("unexpected Fotmob.MaxRetries: %d", cfg.Fotmob.MaxRetries)
	}
}

func TestLoad_InvalidSourceTimeout(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOTMOB_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid FOTMOB_TIMEOUT")
	}
}

func TestLoad_WorkerCountValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("INGEST_WORKER_COUNT", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for INGEST_WORKER_COUNT=0")
	}
}

func TestLoad_CronOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("INGEST_CRON", "30 5 * * *")
	t.Setenv("METADATA_CRON", "0 3 * * 0")
	t.Setenv("INGEST_RUN_ON_START", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.IngestCron != "30 5 * * *" {
		t.Fatalf("unexpected IngestCron: %q", cfg.IngestCron)
	}
	if cfg.MetadataCron != "0 3 * * 0" {
		t.Fatalf("unexpected MetadataCron: %q", cfg.MetadataCron)
	}
	if !cfg.RunOnStart {
		t.Fatalf("expected RunOnStart=true")
	}
}
