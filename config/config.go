package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/domain/ports"
	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
	"github.com/reglet-dev/doublecount/infrastructure/parser"
)

// Environment variables that override the file.
const (
	EnvLogLevel   = "DOUBLES_LOG_LEVEL"
	EnvModuleName = "DOUBLES_MODULE_NAME"
)

// Config is the full configuration.
type Config struct {
	Module  ModuleConfig  `yaml:"module"`
	Exports []string      `yaml:"exports" validate:"omitempty,unique,dive,export_name"`
	Log     LogConfig     `yaml:"log"`
	Limits  LimitsConfig  `yaml:"limits"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ModuleConfig names the registered module.
type ModuleConfig struct {
	Name string `yaml:"name" validate:"required,identifier"`
	Doc  string `yaml:"doc"`
}

// LimitsConfig bounds guest input.
type LimitsConfig struct {
	// MaxRequestSize in bytes. Default: 1 MiB
	MaxRequestSize int `yaml:"max_request_size" validate:"gt=0"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	Source bool   `yaml:"source"`
}

// MetricsConfig toggles Prometheus collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Module: ModuleConfig{
			Name: extension.DefaultName,
			Doc:  extension.DefaultDoc,
		},
		Limits: LimitsConfig{MaxRequestSize: hostfuncs.DefaultMaxRequestSize},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

type loadOptions struct {
	decoder ports.ConfigDecoder
	getenv  func(string) string
}

// Option configures Parse and Load.
type Option func(*loadOptions)

// WithDecoder replaces the YAML decoder.
func WithDecoder(d ports.ConfigDecoder) Option {
	return func(o *loadOptions) {
		o.decoder = d
	}
}

// WithGetenv replaces os.Getenv for environment overrides.
func WithGetenv(getenv func(string) string) Option {
	return func(o *loadOptions) {
		o.getenv = getenv
	}
}

// Load reads and parses the file at path.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse decodes data over Default, applies environment overrides and validates.
func Parse(data []byte, opts ...Option) (*Config, error) {
	o := loadOptions{
		decoder: parser.NewYAMLDecoder(),
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if err := o.decoder.Decode(data, cfg); err != nil {
		return nil, &domainErrors.ConfigError{Err: err}
	}
	cfg.applyEnv(o.getenv)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvModuleName); v != "" {
		c.Module.Name = v
	}
}

// normalize maps accepted aliases onto the canonical values checked by Validate.
func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
}

// Validate checks every field. Each failure is a *errors.ConfigError naming
// the field by its YAML path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return &domainErrors.ConfigError{Err: err}
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &domainErrors.ConfigError{
			Field: fieldPath(fe),
			Err:   fmt.Errorf("failed on '%s' with value %v", fe.Tag(), fe.Value()),
		})
	}
	return stdErrors.Join(errs...)
}

// ModuleOptions converts the configuration into extension options.
func (c *Config) ModuleOptions() []extension.Option {
	return []extension.Option{
		extension.WithName(c.Module.Name),
		extension.WithDoc(c.Module.Doc),
		extension.WithExports(c.Exports...),
	}
}

// fieldPath turns "Config.module.name" into "module.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "identifier", func(fl validator.FieldLevel) bool {
		return extension.ValidName(fl.Field().String())
	})
	mustRegister(v, "export_name", func(fl validator.FieldLevel) bool {
		for _, name := range extension.ExportNames() {
			if name == fl.Field().String() {
				return true
			}
		}
		return false
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: register %s validation: %v", tag, err))
	}
}
