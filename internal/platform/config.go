package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the config files FindConfig looks for, in order.
var ConfigFileNames = []string{"bubbly.yaml", ".bubbly.yaml"}

// FileConfig is the content of a bubbly.yaml file. Zero fields leave the defaults alone.
type FileConfig struct {
	Data         string `yaml:"data"`
	Adapter      string `yaml:"adapter"`
	Format       string `yaml:"format"`
	Debounce     string `yaml:"debounce"`
	ReadOnly     bool   `yaml:"read_only"`
	DevSafety    *bool  `yaml:"dev_safety"`
	FirstWeekday string `yaml:"first_weekday"`
	SQLite       struct {
		WAL  *bool  `yaml:"wal"`
		Sync string `yaml:"sync"`
	} `yaml:"sqlite"`

	// Dir is the directory holding the file; relative data paths resolve against it.
	Dir string `yaml:"-"`
}

// FindConfig walks up from startDir looking for a config file and returns its path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("config not found")
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Debounce != "" {
		if _, err := time.ParseDuration(cfg.Debounce); err != nil {
			return nil, fmt.Errorf("config %s: debounce: %w", path, err)
		}
	}
	if cfg.FirstWeekday != "" {
		if _, err := ParseWeekday(cfg.FirstWeekday); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.Dir = filepath.Dir(path)
	return &cfg, nil
}

// DataPath returns the configured data path, relative paths resolved against the file.
func (c *FileConfig) DataPath() string {
	if c.Data == "" || filepath.IsAbs(c.Data) || strings.HasPrefix(c.Data, "~/") || c.Data == ":memory:" {
		return c.Data
	}
	return filepath.Join(c.Dir, c.Data)
}

// Options translates the file into functional options. Options passed after these win.
func (c *FileConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Format != "" {
		opts = append(opts, WithFormat(c.Format))
	}
	if d, err := time.ParseDuration(c.Debounce); err == nil && c.Debounce != "" {
		opts = append(opts, WithDebounce(d))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	if c.DevSafety != nil {
		opts = append(opts, WithDevSafety(*c.DevSafety))
	}
	if c.SQLite.WAL != nil {
		opts = append(opts, WithSQLiteWAL(*c.SQLite.WAL))
	}
	if c.SQLite.Sync != "" {
		opts = append(opts, WithSQLiteSync(c.SQLite.Sync))
	}
	return opts
}

// Weekday returns the configured first day of the week, Sunday by default.
func (c *FileConfig) Weekday() time.Weekday {
	wd, err := ParseWeekday(c.FirstWeekday)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// ParseWeekday accepts an English weekday name or its three-letter prefix, any case.
// The empty string is Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
