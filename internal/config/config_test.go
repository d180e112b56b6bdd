package config

import (
	"testing"
	"time"
)

// gavelEnvVars lists all env vars that must be cleared between tests.
var gavelEnvVars = []string{
	"GAVEL_DATABASE_URL", "GAVEL_HTTP_ADDR", "GAVEL_NATS_URL", "GAVEL_AUTH_TOKEN",
	"GAVEL_TICK_INTERVAL", "GAVEL_EXHIBIT_S3_BUCKET", "GAVEL_EXHIBIT_S3_ENDPOINT",
	"GAVEL_EXHIBIT_S3_REGION", "GAVEL_EXHIBIT_S3_PREFIX", "GAVEL_EXHIBIT_DIR",
	"GAVEL_EXHIBIT_MAX_BYTES",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range gavelEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "Defaults",
			env:          map[string]string{"GAVEL_DATABASE_URL": "postgres://localhost/gavel"},
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"GAVEL_DATABASE_URL": "postgres://db:5432/gavel",
				"GAVEL_HTTP_ADDR":    ":3000",
				"GAVEL_NATS_URL":     "nats://localhost:4222",
			},
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["GAVEL_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["GAVEL_DATABASE_URL"])
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadTickInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GAVEL_DATABASE_URL", "postgres://localhost/gavel")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}

	t.Setenv("GAVEL_TICK_INTERVAL", "250ms")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", cfg.TickInterval)
	}
}

func TestLoadTickDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GAVEL_DATABASE_URL", "postgres://localhost/gavel")
	t.Setenv("GAVEL_TICK_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickInterval != 0 {
		t.Errorf("TickInterval = %v, want 0 (disabled)", cfg.TickInterval)
	}
}

func TestLoadTickInvalid(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GAVEL_DATABASE_URL", "postgres://localhost/gavel")
	t.Setenv("GAVEL_TICK_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid GAVEL_TICK_INTERVAL")
	}
}

func TestLoadExhibitStorage(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GAVEL_DATABASE_URL", "postgres://localhost/gavel")
	t.Setenv("GAVEL_EXHIBIT_S3_BUCKET", "exhibits")
	t.Setenv("GAVEL_EXHIBIT_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("GAVEL_EXHIBIT_S3_REGION", "eu-west-1")
	t.Setenv("GAVEL_EXHIBIT_MAX_BYTES", "1048576")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExhibitS3Bucket != "exhibits" {
		t.Errorf("ExhibitS3Bucket = %q", cfg.ExhibitS3Bucket)
	}
	if cfg.ExhibitS3Endpoint != "http://minio:9000" {
		t.Errorf("ExhibitS3Endpoint = %q", cfg.ExhibitS3Endpoint)
	}
	if cfg.ExhibitS3Region != "eu-west-1" {
		t.Errorf("ExhibitS3Region = %q", cfg.ExhibitS3Region)
	}
	if cfg.ExhibitS3Prefix != "gavel" {
		t.Errorf("ExhibitS3Prefix = %q, want default", cfg.ExhibitS3Prefix)
	}
	if cfg.ExhibitMaxBytes != 1048576 {
		t.Errorf("ExhibitMaxBytes = %d", cfg.ExhibitMaxBytes)
	}
}

func TestLoadExhibitMaxBytesInvalid(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GAVEL_DATABASE_URL", "postgres://localhost/gavel")
	t.Setenv("GAVEL_EXHIBIT_MAX_BYTES", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid GAVEL_EXHIBIT_MAX_BYTES")
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
