package core

import (
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "orrery.config.yml"

type Config struct {
	TemplateDir  string `yaml:"templateDir"`
	StaticDir    string `yaml:"staticDir"`
	DebugHeaders bool   `yaml:"debugHeaders"`
	DebugLogs    bool   `yaml:"debugLogs,omitempty"`
	Minify       *bool  `yaml:"minify,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty"`
	LogFormat    string `yaml:"logFormat,omitempty"`
}

// MinifyEnabled reports whether production output should be minified.
// Unset means on.
func (c Config) MinifyEnabled() bool {
	return c.Minify == nil || *c.Minify
}

var LoadConfig = func(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultConfig()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig()
	}

	return &cfg
}

func defaultConfig() *Config {
	return &Config{}
}
