package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// DefaultConfigFile is the configuration file looked up when -c is not given.
const DefaultConfigFile = "texbuild.yaml"

// Config represents the application configuration file.
type Config struct {
	Latex       LatexConfig       `yaml:"latex"`
	Bibtex      BibtexConfig      `yaml:"bibtex"`
	Scan        ScanConfig        `yaml:"scan"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Declare     DeclareConfig     `yaml:"declare"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Inventory   string            `yaml:"inventory,omitempty"`
}

// LatexConfig configures the compiler invocation.
type LatexConfig struct {
	Executable     string `yaml:"executable,omitempty"`
	MaxRepetitions int    `yaml:"max_repetitions,omitempty"`
}

// BibtexConfig configures the bibliography tool.
type BibtexConfig struct {
	Executable string `yaml:"executable,omitempty"`
	Run        bool   `yaml:"run"`
}

// ScanConfig controls dependency scanning and the project-tree filter.
type ScanConfig struct {
	ProjectRoot string   `yaml:"project_root,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	MaxDepth    int      `yaml:"max_depth,omitempty"`
}

// DiagnosticsConfig holds the log-parser heuristics. Wrap detection is tuned
// to pdfTeX's historical max_print_line and is a frequent source of false
// positives on other engines, hence configurable. An explicit wrap_width of 0
// turns it off, so the field is a pointer to tell that apart from "unset".
type DiagnosticsConfig struct {
	WrapWidth    *int     `yaml:"wrap_width,omitempty"`
	WrapSuffixes []string `yaml:"wrap_suffixes,omitempty"`
}

// Width returns the configured wrap width, or the default when unset.
func (d DiagnosticsConfig) Width() int {
	if d.WrapWidth == nil {
		return DefaultWrapWidth
	}
	return *d.WrapWidth
}

// DeclareConfig selects where dependency declarations are sent.
type DeclareConfig struct {
	Sink    DeclareSink `yaml:"sink,omitempty"`
	NATSURL string      `yaml:"nats_url,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig configures the optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from the specified file. A missing file is not an
// error: the defaults are returned instead.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.ConfigInvalid(configPath, err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.ConfigInvalid(configPath, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Latex.MaxRepetitions == 0 {
		c.Latex.MaxRepetitions = DefaultMaxRepetitions
	}
	if c.Scan.MaxDepth == 0 {
		c.Scan.MaxDepth = DefaultMaxDepth
	}
	if c.Scan.Exclude == nil {
		c.Scan.Exclude = append([]string(nil), DefaultExcludes...)
	}
	if c.Diagnostics.WrapWidth == nil {
		w := DefaultWrapWidth
		c.Diagnostics.WrapWidth = &w
	}
	if c.Diagnostics.WrapSuffixes == nil {
		c.Diagnostics.WrapSuffixes = append([]string(nil), DefaultWrapSuffixes...)
	}
	c.Declare.Sink = NormalizeDeclareSink(string(c.Declare.Sink))
	if c.Declare.Subject == "" {
		c.Declare.Subject = DefaultSubject
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Init creates a new configuration file with the default content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.FileSystemError("write config", err)
	}
	return nil
}
