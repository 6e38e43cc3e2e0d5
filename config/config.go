// Package config loads the server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that points at the config file.
const EnvPath = "SCHOLAR_CONFIG"

const defaultConfigYAML = `# scholar configuration
server:
  addr: ":8080"
  read_timeout: 15s
  write_timeout: 60s
  shutdown_grace: 10s

database:
  driver: sqlite
  dsn: "file:scholar.db?_pragma=foreign_keys(1)"
  migrate: true

documents:
  template_root: templates
  static_base_url: static
  scratch_dir: ""
  locale: es
  timeout: 30s
  certificate:
    folder: certificate
    template: enrollment
    filename: "enrollment-${student.file_number}"
  pdf:
    fonts:
      regular: ""
      bold: ""
      italic: ""
      bold_italic: ""
    font_dirs: []
    page_size: A4
    landscape: false
    margin_mm: 20
    font_size_pt: 11
    max_concurrent: 2
    layout_debug_dir: ""

log:
  level: info
  format: text
`

// Config is the root of the YAML document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Documents DocumentsConfig `yaml:"documents"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// DatabaseConfig selects the SQL driver: sqlite, postgres or mysql.
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type DocumentsConfig struct {
	TemplateRoot  string            `yaml:"template_root"`
	StaticBaseURL string            `yaml:"static_base_url"`
	ScratchDir    string            `yaml:"scratch_dir"`
	Locale        string            `yaml:"locale"`
	Timeout       time.Duration     `yaml:"timeout"`
	Certificate   CertificateConfig `yaml:"certificate"`
	PDF           PDFConfig         `yaml:"pdf"`
}

// CertificateConfig names the template used for enrollment certificates.
type CertificateConfig struct {
	Folder   string `yaml:"folder"`
	Template string `yaml:"template"`
	// Filename may reference the certificate context as ${student.last_name}.
	Filename string `yaml:"filename"`
}

type PDFConfig struct {
	Fonts          FontFiles `yaml:"fonts"`
	FontDirs       []string  `yaml:"font_dirs"`
	PageSize       string    `yaml:"page_size"`
	Landscape      bool      `yaml:"landscape"`
	MarginMM       float64   `yaml:"margin_mm"`
	FontSizePt     float64   `yaml:"font_size_pt"`
	MaxConcurrent  int64     `yaml:"max_concurrent"`
	LayoutDebugDir string    `yaml:"layout_debug_dir"`
}

// FontFiles overrides font discovery with explicit faces.
type FontFiles struct {
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

// Load reads path over the defaults. An empty path falls back to
// $SCHOLAR_CONFIG; a missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if path == "" {
		path = "scholar.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, cfg.Validate()
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

var (
	drivers    = map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	locales    = map[string]bool{"es": true, "en": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !drivers[c.Database.Driver] {
		errs = append(errs, fmt.Errorf("database.driver %q is not one of sqlite, postgres, mysql", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	d := c.Documents
	if d.TemplateRoot == "" {
		errs = append(errs, errors.New("documents.template_root is required"))
	}
	if !locales[strings.ToLower(d.Locale)] {
		errs = append(errs, fmt.Errorf("documents.locale %q is not one of es, en", d.Locale))
	}
	if d.Timeout <= 0 {
		errs = append(errs, errors.New("documents.timeout must be positive"))
	}
	if d.Certificate.Folder == "" || d.Certificate.Template == "" {
		errs = append(errs, errors.New("documents.certificate folder and template are required"))
	}
	if d.PDF.MaxConcurrent < 1 {
		errs = append(errs, errors.New("documents.pdf.max_concurrent must be at least 1"))
	}
	if d.PDF.MarginMM < 0 || d.PDF.FontSizePt < 0 {
		errs = append(errs, errors.New("documents.pdf margin and font size cannot be negative"))
	}
	if !logFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level (debug, info, warn, error).
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return lvl, nil
}
