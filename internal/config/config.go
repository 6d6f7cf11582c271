package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "TRUTHSIGNAL_CONFIG"
	listenAddrEnv = "LISTEN_ADDR"
	logLevelEnv   = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Logging   LoggingConfig    `yaml:"logging"`
	Analysis  AnalysisConfig   `yaml:"analysis"`
	Providers []ProviderConfig `yaml:"providers"`
}

// ServerConfig describes the HTTP boundary.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AnalysisConfig tunes the disclosure analysis stage.
type AnalysisConfig struct {
	PreferredProvider string `yaml:"preferredProvider"`
}

// ProviderConfig describes one remote chat-completion provider. The API key
// is normally injected through the environment variable named in apiKeyEnv;
// an inline apiKey in the file takes effect only when the variable is unset.
type ProviderConfig struct {
	ID        string `yaml:"id"`
	BaseURL   string `yaml:"baseUrl"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	for i := range c.Providers {
		if c.Providers[i].APIKeyEnv == "" {
			continue
		}
		if v := os.Getenv(c.Providers[i].APIKeyEnv); v != "" {
			c.Providers[i].APIKey = v
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.ListenAddr != "" {
		base.Server.ListenAddr = override.Server.ListenAddr
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Analysis.PreferredProvider != "" {
		base.Analysis.PreferredProvider = override.Analysis.PreferredProvider
	}
	if len(override.Providers) > 0 {
		base.Providers = override.Providers
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{ListenAddr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
		Providers: []ProviderConfig{
			{
				ID:        "deepseek",
				BaseURL:   "https://api.deepseek.com/v1",
				Model:     "deepseek-chat",
				APIKeyEnv: "DEEPSEEK_API_KEY",
			},
			{
				ID:        "groq",
				BaseURL:   "https://api.groq.com/openai/v1",
				Model:     "llama-3.1-8b-instant",
				APIKeyEnv: "GROQ_API_KEY",
			},
		},
	}
}
