package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tuboc/chip8/audio"
	"github.com/tuboc/chip8/chip8"
	"github.com/tuboc/chip8/config"
	"github.com/tuboc/chip8/emulator"
	"github.com/tuboc/chip8/frontend/headless"
	"github.com/tuboc/chip8/frontend/sdlui"
	"github.com/tuboc/chip8/frontend/termui"
)

type headlessFlags struct {
	cycles   int
	duration time.Duration
	png      string
}

// chip8 run path/to/rom.ch8 -f term --cps 700
func newRunCommand(v *viper.Viper) *cobra.Command {
	var hf headlessFlags
	runCmd := &cobra.Command{
		Use:   "run `path/ROM`",
		Short: "load and start the emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd, cfg, hf, args[0])
		},
	}

	flags := runCmd.Flags()
	flags.StringP("frontend", "f", "sdl", "frontend to run (sdl, term, headless)")
	flags.Int("cps", emulator.Chip8Frequency, "instructions executed per second")
	flags.Int("scale", 10, "window pixels per CHIP-8 pixel (sdl, headless png)")
	flags.Int64("seed", 0, "random seed, 0 picks one from the clock")
	flags.String("fault-policy", "halt", "what to do on a faulting instruction (halt, skip, log)")
	flags.BoolP("step", "s", false, "start in step mode")
	flags.BoolP("debug", "d", false, "show registers and trace instructions")
	flags.IntVar(&hf.cycles, "cycles", 1000, "headless: instructions to execute")
	flags.DurationVar(&hf.duration, "duration", 0, "headless: simulated run time, overrides --cycles")
	flags.StringVar(&hf.png, "png", "", "headless: write the final frame to this PNG file")

	for key, flag := range map[string]string{
		config.KeyFrontend:        "frontend",
		config.KeyCyclesPerSecond: "cps",
		config.KeyScale:           "scale",
		config.KeySeed:            "seed",
		config.KeyFaultPolicy:     "fault-policy",
		config.KeyStepMode:        "step",
		config.KeyDebug:           "debug",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}
	return runCmd
}

func run(cmd *cobra.Command, cfg *config.Config, hf headlessFlags, romPath string) error {
	var machineOpts []chip8.Option
	if cfg.Seed != 0 {
		machineOpts = append(machineOpts, chip8.WithSeed(cfg.Seed))
	}
	m := chip8.New(machineOpts...)

	rom, err := emulator.LoadROMFile(m, romPath)
	if err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr(), "chip8: ", log.LstdFlags)
	runner := emulator.NewRunner(m,
		emulator.WithCyclesPerSecond(cfg.CyclesPerSecond),
		emulator.WithTimerHz(cfg.TimerHz),
		emulator.WithFaultPolicy(cfg.Policy),
		emulator.WithLogger(logger),
		emulator.WithTrace(cfg.Debug && cfg.Frontend != "term"),
		emulator.WithPaused(cfg.StepMode),
	)

	switch cfg.Frontend {
	case "sdl":
		f, err := sdlui.New(runner, rom, sdlui.Options{
			Scale:      int32(cfg.Scale),
			Foreground: cfg.FgColor,
			Background: cfg.BgColor,
			Keymap:     cfg.Keys,
			Debug:      cfg.Debug,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("starting sdl: %w", err)
		}
		defer f.Close()
		return f.Run()

	case "term":
		opts := termui.Options{Keymap: cfg.Keys, Logger: logger}
		if sp, err := audio.OpenSpeaker(audio.DefaultSampleRate, audio.DefaultFrequency); err != nil {
			logger.Printf("audio disabled, using terminal bell: %v", err)
		} else {
			opts.Beeper = sp
		}
		f, err := termui.New(runner, rom, opts)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return f.Run(ctx)

	case "headless":
		return headless.Run(runner, headless.Options{
			Cycles:     hf.cycles,
			Duration:   hf.duration,
			Scale:      cfg.Scale,
			Foreground: cfg.FgColor,
			Background: cfg.BgColor,
			PNGPath:    hf.png,
			Out:        cmd.OutOrStdout(),
		})
	}
	return fmt.Errorf("unsupported frontend: %s", cfg.Frontend)
}
