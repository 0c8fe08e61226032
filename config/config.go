package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from TOML.
type Config struct {
	DataDir       string `toml:"DataDir"`
	ServiceName   string `toml:"ServiceName"`
	Environment   string `toml:"Environment"`
	MetricsListen string `toml:"MetricsListen"`
	AdminAddress  string `toml:"AdminAddress"`
	FeeCollector  string `toml:"FeeCollector"`
}

const defaultConfig = `DataDir = "./ledger-data"
ServiceName = "ledgerd"
Environment = "local"
MetricsListen = ":9464"
AdminAddress = ""
FeeCollector = ""
`

// Load reads the configuration at path, writing a default file first when
// none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return nil, err
		}
	}
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %s", path, undecoded[0])
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./ledger-data"
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = "ledgerd"
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if strings.TrimSpace(c.MetricsListen) == "" {
		c.MetricsListen = ":9464"
	}
}

func createDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
