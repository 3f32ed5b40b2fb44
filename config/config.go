// Package config loads emulator settings from a config file, the
// environment and command line flags.
package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/tuboc/chip8/emulator"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. CHIP8_SCALE=12.
	EnvPrefix = "chip8"
	// FileName is the config file looked up in the home directory.
	FileName = ".chip8"
)

// Config keys.
const (
	KeyCyclesPerSecond = "cycles_per_second"
	KeyTimerHz         = "timer_hz"
	KeyScale           = "scale"
	KeyFrontend        = "frontend"
	KeyFaultPolicy     = "fault_policy"
	KeySeed            = "seed"
	KeyStepMode        = "step_mode"
	KeyDebug           = "debug"
	KeyKeymap          = "keymap"
	KeyForeground      = "foreground"
	KeyBackground      = "background"
)

var frontends = []string{"sdl", "term", "headless"}

type Config struct {
	CyclesPerSecond int               `mapstructure:"cycles_per_second"`
	TimerHz         int               `mapstructure:"timer_hz"`
	Scale           int               `mapstructure:"scale"`
	Frontend        string            `mapstructure:"frontend"`
	FaultPolicy     string            `mapstructure:"fault_policy"`
	Seed            int64             `mapstructure:"seed"`
	StepMode        bool              `mapstructure:"step_mode"`
	Debug           bool              `mapstructure:"debug"`
	Keymap          map[string]string `mapstructure:"keymap"`
	Foreground      string            `mapstructure:"foreground"`
	Background      string            `mapstructure:"background"`

	Policy  emulator.FaultPolicy `mapstructure:"-"`
	Keys    emulator.Keymap      `mapstructure:"-"`
	FgColor color.RGBA           `mapstructure:"-"`
	BgColor color.RGBA           `mapstructure:"-"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCyclesPerSecond, emulator.Chip8Frequency)
	v.SetDefault(KeyTimerHz, 60)
	v.SetDefault(KeyScale, 10)
	v.SetDefault(KeyFrontend, "sdl")
	v.SetDefault(KeyFaultPolicy, "halt")
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyStepMode, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyKeymap, emulator.DefaultLayout)
	v.SetDefault(KeyForeground, "#00ff00")
	v.SetDefault(KeyBackground, "#000000")
}

// ReadFile points v at cfgFile, or at $HOME/.chip8.* when cfgFile is empty,
// and reads it. A missing default file is not an error. It returns the file
// used, if any.
func ReadFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.CyclesPerSecond <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyCyclesPerSecond, c.CyclesPerSecond)
	}
	if c.TimerHz <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyTimerHz, c.TimerHz)
	}
	if c.Scale < 1 || c.Scale > 64 {
		return fmt.Errorf("%s must be between 1 and 64, got %d", KeyScale, c.Scale)
	}

	c.Frontend = strings.ToLower(c.Frontend)
	if !contains(frontends, c.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s", c.Frontend, strings.Join(frontends, ", "))
	}

	var err error
	if c.Policy, err = emulator.ParseFaultPolicy(c.FaultPolicy); err != nil {
		return err
	}
	if c.Keys, err = emulator.ParseKeymap(c.Keymap); err != nil {
		return fmt.Errorf("%s: %w", KeyKeymap, err)
	}
	if c.FgColor, err = ParseColor(c.Foreground); err != nil {
		return fmt.Errorf("%s: %w", KeyForeground, err)
	}
	if c.BgColor, err = ParseColor(c.Background); err != nil {
		return fmt.Errorf("%s: %w", KeyBackground, err)
	}
	return nil
}

// ParseColor parses #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q, want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q, want #rrggbb", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
