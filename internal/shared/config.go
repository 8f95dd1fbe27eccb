package shared

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./rufflift.db"
	} `yaml:"database"`

	Ruff struct {
		Bin            string `yaml:"bin"`             // "ruff"
		TimeoutSeconds int    `yaml:"timeout_seconds"` // 120
	} `yaml:"ruff"`

	Report struct {
		OutDir   string `yaml:"out_dir"`   // "./artifacts"
		RepoName string `yaml:"repo_name"` // shown in the report header (optional)
	} `yaml:"report"`

	API struct {
		Addr           string   `yaml:"addr"`            // ":8787"
		AllowedOrigins []string `yaml:"allowed_origins"` // CORS allowlist
		SessionHours   int      `yaml:"session_hours"`   // 12
	} `yaml:"api"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./rufflift.db"
	c.Ruff.Bin = "ruff"
	c.Ruff.TimeoutSeconds = 120
	c.Report.OutDir = "./artifacts"
	c.API.Addr = ":8787"
	c.API.SessionHours = 12
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("RUFFLIFT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("RUFFLIFT_RUFF_BIN"); v != "" {
		c.Ruff.Bin = v
	}
	if v := os.Getenv("RUFFLIFT_RUFF_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ruff.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("RUFFLIFT_OUT_DIR"); v != "" {
		c.Report.OutDir = v
	}
	if v := os.Getenv("RUFFLIFT_REPO_NAME"); v != "" {
		c.Report.RepoName = v
	}
	if v := os.Getenv("RUFFLIFT_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("RUFFLIFT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("RUFFLIFT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c, nil
}

// RuffTimeout converts the configured seconds into a duration.
func (c Config) RuffTimeout() time.Duration {
	return time.Duration(c.Ruff.TimeoutSeconds) * time.Second
}
