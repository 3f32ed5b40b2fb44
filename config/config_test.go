package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuboc/chip8/emulator"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chip8.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, emulator.Chip8Frequency, c.CyclesPerSecond)
	assert.Equal(t, 60, c.TimerHz)
	assert.Equal(t, 10, c.Scale)
	assert.Equal(t, "sdl", c.Frontend)
	assert.Equal(t, emulator.FaultHalt, c.Policy)
	assert.Equal(t, emulator.DefaultKeymap(), c.Keys)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, c.FgColor)
	assert.Equal(t, color.RGBA{A: 0xff}, c.BgColor)
}

func TestReadFile(t *testing.T) {
	path := writeConfig(t, `
cycles_per_second: 700
frontend: Term
fault_policy: skip
seed: 42
foreground: "#ffffff"
`)
	v := newViper()
	used, err := ReadFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 700, c.CyclesPerSecond)
	assert.Equal(t, "term", c.Frontend)
	assert.Equal(t, emulator.FaultSkip, c.Policy)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c.FgColor)
	assert.Equal(t, 10, c.Scale)
}

func TestReadFileMissingExplicit(t *testing.T) {
	_, err := ReadFile(newViper(), filepath.Join(os.TempDir(), "does-not-exist-chip8.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "scale: 4\n")
	require.NoError(t, os.Setenv("CHIP8_SCALE", "12"))
	defer os.Unsetenv("CHIP8_SCALE") //nolint:errcheck // test cleanup

	v := newViper()
	_, err := ReadFile(v, path)
	require.NoError(t, err)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 12, c.Scale)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{KeyCyclesPerSecond, 0},
		{KeyTimerHz, -1},
		{KeyScale, 0},
		{KeyScale, 100},
		{KeyFrontend, "vulkan"},
		{KeyFaultPolicy, "ignore"},
		{KeyForeground, "green"},
		{KeyBackground, "#12345"},
		{KeyKeymap, map[string]string{"0": "q"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.key, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#1a2B3c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}
