package paths

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Paths holds the resolved location of the config file
type Paths struct {
	ConfigFile string
}

// DefaultPaths returns the default paths based on current user
// Root user: /etc/linkcheck/config.yaml
// Non-root: ~/.linkcheck/config.yaml
func DefaultPaths() (*Paths, error) {
	if os.Geteuid() == 0 {
		return &Paths{ConfigFile: "/etc/linkcheck/config.yaml"}, nil
	}

	usr, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return &Paths{ConfigFile: filepath.Join(usr.HomeDir, ".linkcheck", "config.yaml")}, nil
}

// ResolveConfig picks the config file to load: an explicit path always wins,
// then the default location if a file exists there. An empty result means
// built-in defaults only.
func ResolveConfig(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	p, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	if p.ConfigExists() {
		return p.ConfigFile, nil
	}
	return "", nil
}

// EnsureDirectories creates the config directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	dir := filepath.Dir(p.ConfigFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ConfigExists checks if the config file exists
func (p *Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile)
	return err == nil
}

// String returns a human-readable representation of the paths
func (p *Paths) String() string {
	return fmt.Sprintf("Config: %s", p.ConfigFile)
}

// DefaultConfig is the commented config written by CreateDefaultConfig
const DefaultConfig = `# linkcheck configuration

server:
  address: ":8080"
  enable_tui: false

logging:
  format: text        # text or json
  debug: false

test:
  # Leave both URLs empty to show an estimate instead of measuring.
  # "linkcheck serve" exposes /speed/down and /speed/up you can point these at.
  download_url: ""
  upload_url: ""
  duration: 10s
  parallel_streams: 6  # upload uses half, minimum 1
  passes: 2            # best pass wins
  warmup: 2s
  bucket_width: 250ms
  percentile: p95      # p95 or peak

latency:
  url: ""              # defaults to the origin of the download URL
  count: 5
  timeout: 5s

hint:
  # Seed values; POST /api/v1/hint replaces them at runtime
  effective_type: ""
  downlink: 0          # Mbps
  rtt: 0               # ms
  icmp_host: ""        # set to refresh rtt with ICMP pings, e.g. 1.1.1.1
  icmp_interval: 30s

provider:
  enabled: true
  primary_url: "https://ipapi.co/json/"
  fallback_url: "https://ipwho.is/"
  timeout: 5s
`

// CreateDefaultConfig creates a default config file with sample content
// Returns true if a new config was created, false if it already existed
func (p *Paths) CreateDefaultConfig() (bool, error) {
	if p.ConfigExists() {
		return false, nil
	}

	if err := p.EnsureDirectories(); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(p.ConfigFile, []byte(DefaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
