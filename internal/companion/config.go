// ABOUTME: Companion configuration loaded from a TOML file
// ABOUTME: Poll intervals are raw duration strings with sane defaults

package companion

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the companion's TOML configuration.
type Config struct {
	ServerURL string `toml:"server_url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`

	PollIntervalRaw  string `toml:"poll_interval"`
	ErrorIntervalRaw string `toml:"error_interval"`

	PollInterval  time.Duration `toml:"-"`
	ErrorInterval time.Duration `toml:"-"`
}

// DefaultConfigTOML is written by the init command as a starting point.
const DefaultConfigTOML = `# techhub companion configuration
server_url = "http://localhost:8080"
username = ""
password = ""

# How often to poll the command queue, and how long to back off after an
# error. Go duration strings.
poll_interval = "2s"
error_interval = "5s"
`

// LoadConfig reads and validates the companion configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password are required")
	}

	var err error
	if c.PollInterval, err = parseInterval(c.PollIntervalRaw, 2*time.Second); err != nil {
		return fmt.Errorf("poll_interval: %w", err)
	}
	if c.ErrorInterval, err = parseInterval(c.ErrorIntervalRaw, 5*time.Second); err != nil {
		return fmt.Errorf("error_interval: %w", err)
	}
	return nil
}

func parseInterval(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
