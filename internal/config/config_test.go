package config_test

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/NamanBalaji/uploadsim/internal/config"
	"github.com/NamanBalaji/uploadsim/internal/errors"
)

func withTempConfigHome(t *testing.T) (restore func(), file string) {
	t.Helper()
	orig := xdg.ConfigHome
	dir := t.TempDir()
	xdg.ConfigHome = dir
	restore = func() { xdg.ConfigHome = orig }
	file = filepath.Join(dir, "uploadsim")
	return
}

func TestGetConfig_Table(t *testing.T) {
	restore, cfgFile := withTempConfigHome(t)
	defer restore()

	def := cfg.DefaultConfig()

	tests := []struct {
		name      string
		preWrite  bool
		contents  string
		expectErr bool
		check     func(t *testing.T, got *cfg.Config, def cfg.Config)
	}{
		{
			name:     "missing_file_returns_defaults",
			preWrite: false,
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if !reflect.DeepEqual(*got, def) {
					t.Fatalf("expected defaults\nwant: %#v\ngot:  %#v", def, *got)
				}
			},
		},
		{
			name:     "empty_file_returns_defaults",
			preWrite: true,
			contents: "",
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if !reflect.DeepEqual(*got, def) {
					t.Fatalf("expected defaults\nwant: %#v\ngot:  %#v", def, *got)
				}
			},
		},
		{
			name:      "invalid_yaml_returns_error",
			preWrite:  true,
			contents:  ": not yaml",
			expectErr: true,
		},
		{
			name:     "partial_override_and_fallback",
			preWrite: true,
			contents: `
tickInterval: 200ms
maxIncrement: 0.25
seed: 99
log:
  level: debug
`,
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				assert.Equal(t, 200*time.Millisecond, got.TickInterval)
				assert.Equal(t, 0.25, got.MaxIncrement)
				assert.Equal(t, uint64(99), got.Seed)
				assert.Equal(t, "debug", got.Log.Level)

				assert.Equal(t, def.MinIncrement, got.MinIncrement)
				assert.Equal(t, def.MaxTimers, got.MaxTimers)
				assert.Equal(t, def.Log.File, got.Log.File)
			},
		},
		{
			name:     "explicit_zero_values_fall_back_to_defaults",
			preWrite: true,
			contents: `
tickInterval: 0s
maxIncrement: 0
log:
  level: ""
`,
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if !reflect.DeepEqual(*got, def) {
					t.Fatalf("zero values should fall back\nwant: %#v\ngot:  %#v", def, *got)
				}
			},
		},
		{
			name:      "increment_above_one_is_invalid",
			preWrite:  true,
			contents:  "maxIncrement: 1.5\n",
			expectErr: true,
		},
		{
			name:      "min_above_max_is_invalid",
			preWrite:  true,
			contents:  "minIncrement: 0.2\nmaxIncrement: 0.1\n",
			expectErr: true,
		},
		{
			name:      "negative_interval_is_invalid",
			preWrite:  true,
			contents:  "tickInterval: -1s\n",
			expectErr: true,
		},
		{
			name:      "unknown_log_level_is_invalid",
			preWrite:  true,
			contents:  "log:\n  level: loud\n",
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_ = os.Remove(cfgFile)
			if tc.preWrite {
				if err := os.WriteFile(cfgFile, []byte(tc.contents), 0o600); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}

			got, err := cfg.GetConfig()
			if tc.expectErr {
				require.Error(t, err)
				assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
				return
			}

			require.NoError(t, err)
			tc.check(t, got, def)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploadsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickInterval: 1s\nmaxTimers: 2\n"), 0o600))

	t.Setenv("UPLOADSIM_TICK_INTERVAL", "10ms")
	t.Setenv("UPLOADSIM_MAX_INCREMENT", "0.5")
	t.Setenv("UPLOADSIM_SEED", "7")
	t.Setenv("UPLOADSIM_LOG_LEVEL", "warn")

	got, err := cfg.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, got.TickInterval)
	assert.Equal(t, 0.5, got.MaxIncrement)
	assert.Equal(t, uint64(7), got.Seed)
	assert.Equal(t, "warn", got.Log.Level)
	assert.Equal(t, 2, got.MaxTimers, "unset variables keep the file value")
}

func TestEnvOverrideIsValidated(t *testing.T) {
	t.Setenv("UPLOADSIM_MAX_INCREMENT", "2")

	_, err := cfg.Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestMalformedEnvValue(t *testing.T) {
	t.Setenv("UPLOADSIM_TICK_INTERVAL", "soon")

	_, err := cfg.Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestSeedEnvOverride(t *testing.T) {
	testCases := []struct {
		name    string
		value   string
		want    uint64
		wantErr bool
	}{
		{name: "largest seed", value: "18446744073709551615", want: math.MaxUint64},
		{name: "negative seed", value: "-1", wantErr: true},
		{name: "not a number", value: "lucky", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("UPLOADSIM_SEED", tc.value)

			got, err := cfg.Load(filepath.Join(t.TempDir(), "missing"))
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Seed)
		})
	}
}

func TestDefaultConfig_NonNilPointers(t *testing.T) {
	d := cfg.DefaultConfig()
	require.NotNil(t, d.Log)
	assert.NoError(t, d.Validate())
	assert.Equal(t, 450*time.Millisecond, d.TickInterval)
	assert.Equal(t, 0.12, d.MaxIncrement)
}
