// Package cmd implements the chip8 command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tuboc/chip8/config"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// NewRootCommand builds the chip8 command tree around a fresh viper
// instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string
	rootCmd := &cobra.Command{
		Use:   "chip8 [command]",
		Short: "CHIP-8 emulator using Go",
		Long: "A CHIP-8 interpreter with SDL, terminal and headless frontends. " +
			"Settings are read from $HOME/.chip8.yaml, CHIP8_* environment variables and flags.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			used, err := config.ReadFile(v, cfgFile)
			if err != nil {
				return err
			}
			if used != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chip8.yaml)")

	rootCmd.AddCommand(newRunCommand(v), newDisasmCommand(), newVersionCommand())
	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := "chip8 " + version
			if commit != "" {
				s += " (" + commit
				if date != "" {
					s += ", " + date
				}
				s += ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
		},
	}
}
