package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string // GAVEL_DATABASE_URL (required)
	HTTPAddr    string // GAVEL_HTTP_ADDR (default ":8080")
	NATSURL     string // GAVEL_NATS_URL (optional, empty = no events)
	AuthToken   string // GAVEL_AUTH_TOKEN (optional, empty = auth disabled)

	// TickInterval drives the built-in turn countdown sweeper
	// (GAVEL_TICK_INTERVAL, default 1s; 0 = disabled, an external
	// scheduler must then hit the tick endpoint).
	TickInterval time.Duration

	// Exhibit artifact storage. S3 is used when a bucket is set,
	// otherwise the local directory; with neither, uploads are disabled.
	ExhibitS3Bucket   string // GAVEL_EXHIBIT_S3_BUCKET (enables S3 when set)
	ExhibitS3Endpoint string // GAVEL_EXHIBIT_S3_ENDPOINT (custom endpoint for MinIO)
	ExhibitS3Region   string // GAVEL_EXHIBIT_S3_REGION (default "us-east-1")
	ExhibitS3Prefix   string // GAVEL_EXHIBIT_S3_PREFIX (default "gavel")
	ExhibitDir        string // GAVEL_EXHIBIT_DIR (local storage root)
	ExhibitMaxBytes   int64  // GAVEL_EXHIBIT_MAX_BYTES (0 = model default)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("GAVEL_DATABASE_URL"),
		HTTPAddr:          envOrDefault("GAVEL_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("GAVEL_NATS_URL"),
		AuthToken:         os.Getenv("GAVEL_AUTH_TOKEN"),
		ExhibitS3Bucket:   os.Getenv("GAVEL_EXHIBIT_S3_BUCKET"),
		ExhibitS3Endpoint: os.Getenv("GAVEL_EXHIBIT_S3_ENDPOINT"),
		ExhibitS3Region:   envOrDefault("GAVEL_EXHIBIT_S3_REGION", "us-east-1"),
		ExhibitS3Prefix:   envOrDefault("GAVEL_EXHIBIT_S3_PREFIX", "gavel"),
		ExhibitDir:        os.Getenv("GAVEL_EXHIBIT_DIR"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("GAVEL_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("GAVEL_TICK_INTERVAL", "1s")
	d, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("GAVEL_TICK_INTERVAL: %w", err)
	}
	c.TickInterval = d

	if v := os.Getenv("GAVEL_EXHIBIT_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("GAVEL_EXHIBIT_MAX_BYTES: %q is not a valid size", v)
		}
		c.ExhibitMaxBytes = n
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
