// Package config loads service and CLI settings: built-in defaults, then an
// optional TOML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "ccgen.toml"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Events    EventsConfig    `toml:"events"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Generate  GenerateConfig  `toml:"generate"`
}

type ServerConfig struct {
	Port int  `toml:"port"` // PORT, CCGEN_PORT (default 8080)
	Seed bool `toml:"seed"` // CCGEN_SEED: store the sample project on an empty database
}

type DatabaseConfig struct {
	URL string `toml:"url"` // DATABASE_URL; "memory" keeps projects in process
}

type EventsConfig struct {
	NATSURL    string `toml:"nats_url"`    // CCGEN_NATS_URL (optional, empty = in-process only)
	BufferSize int    `toml:"buffer_size"` // CCGEN_EVENT_BUFFER (default 256)
}

type ArtifactsConfig struct {
	Dir        string `toml:"dir"`         // CCGEN_ARTIFACT_DIR (enables the directory sink)
	Prefix     string `toml:"prefix"`      // CCGEN_ARTIFACT_PREFIX (default "chaincode")
	S3Bucket   string `toml:"s3_bucket"`   // CCGEN_S3_BUCKET (enables the S3 sink)
	S3Region   string `toml:"s3_region"`   // CCGEN_S3_REGION (default "us-east-1")
	S3Endpoint string `toml:"s3_endpoint"` // CCGEN_S3_ENDPOINT (custom endpoint for MinIO)
}

type GenerateConfig struct {
	Gofmt bool `toml:"gofmt"` // CCGEN_GOFMT: run go/format over generated source
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{URL: "file:chaincodegen.db?_pragma=foreign_keys(1)"},
		Events:    EventsConfig{BufferSize: 256},
		Artifacts: ArtifactsConfig{Prefix: "chaincode", S3Region: "us-east-1"},
	}
}

// Load builds the configuration. A non-empty path must exist; an empty path
// reads DefaultFile when present.
func Load(path string) (*Config, error) {
	c := Default()

	file, required := path, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if _, err := toml.DecodeFile(file, c); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := firstEnv("CCGEN_PORT", "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CCGEN_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CCGEN_SEED: %w", err)
		}
		c.Server.Seed = b
	}
	c.Database.URL = envOrDefault("DATABASE_URL", c.Database.URL)
	c.Events.NATSURL = envOrDefault("CCGEN_NATS_URL", c.Events.NATSURL)
	if v := os.Getenv("CCGEN_EVENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CCGEN_EVENT_BUFFER: %w", err)
		}
		c.Events.BufferSize = n
	}
	c.Artifacts.Dir = envOrDefault("CCGEN_ARTIFACT_DIR", c.Artifacts.Dir)
	c.Artifacts.Prefix = envOrDefault("CCGEN_ARTIFACT_PREFIX", c.Artifacts.Prefix)
	c.Artifacts.S3Bucket = envOrDefault("CCGEN_S3_BUCKET", c.Artifacts.S3Bucket)
	c.Artifacts.S3Region = envOrDefault("CCGEN_S3_REGION", c.Artifacts.S3Region)
	c.Artifacts.S3Endpoint = envOrDefault("CCGEN_S3_ENDPOINT", c.Artifacts.S3Endpoint)
	if v := os.Getenv("CCGEN_GOFMT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CCGEN_GOFMT: %w", err)
		}
		c.Generate.Gofmt = b
	}
	return nil
}

// LoadDotEnv loads environment files, skipping any that do not exist.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
