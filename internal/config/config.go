package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Monitor  MonitorConfig  `yaml:"monitor"`
	Assessor AssessorConfig `yaml:"assessor"`
	Server   ServerConfig   `yaml:"server"`
	StateDir string         `yaml:"state_dir"`
}

type MonitorConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	RenderInterval time.Duration `yaml:"render_interval"`
	// AssessEvery is how many tool calls accrue between assessments.
	AssessEvery int `yaml:"assess_every"`
}

type AssessorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	// Addr enables the WebSocket dashboard server when non-empty.
	// Usually set via the -serve flag instead of the file.
	Addr string `yaml:"addr"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Monitor: MonitorConfig{
			PollInterval:   500 * time.Millisecond,
			RenderInterval: time.Second,
			AssessEvery:    10,
		},
		Assessor: AssessorConfig{
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		StateDir: filepath.Join(home, ".ontrack"),
	}
}

// Load reads the config file at path over the defaults. An empty path or a
// missing file yields plain defaults. The API key can always be supplied
// via ONTRACK_API_KEY instead of the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv("ONTRACK_API_KEY"); key != "" {
		cfg.Assessor.APIKey = key
	}

	return cfg, nil
}
