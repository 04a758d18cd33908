package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClientConfig configures the terminal portal client.
type ClientConfig struct {
	APIURL       string `yaml:"api_url"`
	WSURL        string `yaml:"ws_url"`
	SessionFile  string `yaml:"session_file"`
	SourceOrigin string `yaml:"source_origin"`
	LogFile      string `yaml:"log_file"`
}

func defaultClientConfig() ClientConfig {
	dir := clientDir()
	return ClientConfig{
		APIURL:       "http://localhost:8080/api",
		WSURL:        "ws://localhost:8080/ws",
		SessionFile:  filepath.Join(dir, "session.bin"),
		SourceOrigin: DefaultSourceOrigin,
		LogFile:      filepath.Join(dir, "portal.log"),
	}
}

func clientDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "firmconnect")
	}
	return ".firmconnect"
}

// DefaultClientConfigPath is where LoadClient looks when no path is given.
func DefaultClientConfigPath() string {
	return filepath.Join(clientDir(), "client.yaml")
}

// LoadClient reads the YAML client config. A missing file yields defaults;
// FIRMCONNECT_API_URL and FIRMCONNECT_WS_URL override the file.
func LoadClient(path string) (ClientConfig, error) {
	cfg := defaultClientConfig()
	if path == "" {
		path = DefaultClientConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ClientConfig{}, err
		}
	case !os.IsNotExist(err):
		return ClientConfig{}, err
	}

	if v := strings.TrimSpace(os.Getenv("FIRMCONNECT_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FIRMCONNECT_WS_URL")); v != "" {
		cfg.WSURL = v
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.SourceOrigin = strings.TrimRight(cfg.SourceOrigin, "/")
	return cfg, nil
}
