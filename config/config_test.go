package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
	dlog "github.com/reglet-dev/doublecount/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envOf(vals map[string]string) func(string) string {
	return func(key string) string { return vals[key] }
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, extension.DefaultName, cfg.Module.Name)
	assert.Equal(t, extension.DefaultDoc, cfg.Module.Doc)
	assert.Equal(t, hostfuncs.DefaultMaxRequestSize, cfg.Limits.MaxRequestSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	data := []byte(`
module:
  name: myrustlib
exports: [count_doubles, count_doubles_peek]
limits:
  max_request_size: 4096
log:
  level: debug
  format: json
metrics:
  enabled: true
`)
	cfg, err := Parse(data, WithGetenv(noEnv))
	require.NoError(t, err)

	assert.Equal(t, "myrustlib", cfg.Module.Name)
	assert.Equal(t, extension.DefaultDoc, cfg.Module.Doc, "unset keys keep defaults")
	assert.Equal(t, []string{"count_doubles", "count_doubles_peek"}, cfg.Exports)
	assert.Equal(t, 4096, cfg.Limits.MaxRequestSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil, WithGetenv(noEnv))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_EnvOverrides(t *testing.T) {
	env := envOf(map[string]string{
		EnvLogLevel:   "WARN",
		EnvModuleName: "from_env",
	})

	cfg, err := Parse([]byte("module:\n  name: from_file\n"), WithGetenv(env))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from_env", cfg.Module.Name)
}

func TestParse_LevelAliases(t *testing.T) {
	tests := []struct {
		name string
		data string
		env  map[string]string
		want string
	}{
		{name: "env warning", env: map[string]string{EnvLogLevel: "warning"}, want: "warn"},
		{name: "env upper warning", env: map[string]string{EnvLogLevel: " WARNING "}, want: "warn"},
		{name: "file warning", data: "log:\n  level: warning\n", want: "warn"},
		{name: "file upper debug", data: "log:\n  level: DEBUG\n", want: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), WithGetenv(envOf(tt.env)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Log.Level)

			_, err = dlog.ParseLevel(cfg.Log.Level)
			assert.NoError(t, err)
		})
	}
}

func TestParse_ProcessEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{name: "bad module name", data: "module:\n  name: My-Lib\n", wantField: "module.name"},
		{name: "empty module name", data: "module:\n  name: \"\"\n", wantField: "module.name"},
		{name: "unknown export", data: "exports: [count_doubles_regex]\n", wantField: "exports[0]"},
		{name: "repeated export", data: "exports: [count_doubles, count_doubles]\n", wantField: "exports"},
		{name: "zero limit", data: "limits:\n  max_request_size: 0\n", wantField: "limits.max_request_size"},
		{name: "bad level", data: "log:\n  level: verbose\n", wantField: "log.level"},
		{name: "bad format", data: "log:\n  format: xml\n", wantField: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), WithGetenv(noEnv))
			require.Error(t, err)

			var cfgErr *domainErrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParse_EnvOverrideIsValidated(t *testing.T) {
	_, err := Parse(nil, WithGetenv(envOf(map[string]string{EnvLogLevel: "loud"})))

	var cfgErr *domainErrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "log.level", cfgErr.Field)
}

func TestParse_DecodeError(t *testing.T) {
	_, err := Parse([]byte("modul:\n  name: x\n"), WithGetenv(noEnv))
	require.Error(t, err)

	var cfgErr *domainErrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, cfgErr.Field)
}

type stubDecoder struct{ calls int }

func (s *stubDecoder) Decode(_ []byte, out any) error {
	s.calls++
	out.(*Config).Module.Name = "stubbed"
	return nil
}

func TestParse_WithDecoder(t *testing.T) {
	dec := &stubDecoder{}
	cfg, err := Parse([]byte("ignored"), WithDecoder(dec), WithGetenv(noEnv))
	require.NoError(t, err)
	assert.Equal(t, 1, dec.calls)
	assert.Equal(t, "stubbed", cfg.Module.Name)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doubles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module:\n  doc: from disk\n"), 0o600))

	cfg, err := Load(path, WithGetenv(noEnv))
	require.NoError(t, err)
	assert.Equal(t, "from disk", cfg.Module.Doc)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestModuleOptions(t *testing.T) {
	cfg, err := Parse([]byte("module:\n  name: cfg_mod\n  doc: d\nexports: [count_doubles_fold]\n"), WithGetenv(noEnv))
	require.NoError(t, err)

	mod, err := extension.New(cfg.ModuleOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "cfg_mod", mod.Name())
	assert.Equal(t, "d", mod.Doc())
	assert.Equal(t, []string{"count_doubles_fold"}, mod.Manifest().ExportNames())
}

func TestModuleOptions_AllExports(t *testing.T) {
	mod, err := extension.New(Default().ModuleOptions()...)
	require.NoError(t, err)
	assert.Equal(t, extension.ExportNames(), mod.Manifest().ExportNames())
}
