package collector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the receiver's file-based configuration.
type Config struct {
	AppEnv     string `yaml:"app_env"`
	LogLevel   string `yaml:"log_level"`
	ListenAddr string `yaml:"listen_addr"`
	Password   string `yaml:"password"`
	SQLitePath string `yaml:"sqlite_path"`

	// Sensors maps device MAC addresses to the names handed out by the
	// identity endpoint.
	Sensors map[string]string `yaml:"sensors"`

	// Optional TLS. Both must be set to enable it.
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":15000"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "sensordata.db"
	}
	if cfg.Password == "" {
		return Config{}, fmt.Errorf("config %s: password must be set", path)
	}
	if (cfg.CertPath == "") != (cfg.KeyPath == "") {
		return Config{}, fmt.Errorf("config %s: cert_path and key_path must be set together", path)
	}
	return cfg, nil
}
