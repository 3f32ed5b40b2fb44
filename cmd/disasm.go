package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuboc/chip8/chip8"
)

func newDisasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm `path/ROM`",
		Short: "print a listing of every instruction word in a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading rom: %w", err)
			}
			if len(rom) > chip8.MaxROMSize {
				return fmt.Errorf("%w: %d bytes, limit is %d", chip8.ErrRomTooLarge, len(rom), chip8.MaxROMSize)
			}
			return writeListing(cmd.OutOrStdout(), rom)
		},
	}
}

// writeListing prints address, word and mnemonic for each word of rom as
// loaded at ProgramOffset. A trailing odd byte is printed as data.
func writeListing(w io.Writer, rom []byte) error {
	bw := bufio.NewWriter(w)
	addr := chip8.ProgramOffset
	for i := 0; i+1 < len(rom); i += 2 {
		op := uint16(rom[i])<<8 | uint16(rom[i+1])
		fmt.Fprintf(bw, "%03X  %04X  %s\n", addr+i, op, chip8.Disassemble(op))
	}
	if len(rom)%2 == 1 {
		last := len(rom) - 1
		fmt.Fprintf(bw, "%03X  %02X    DB   #%02X\n", addr+last, rom[last], rom[last])
	}
	return bw.Flush()
}
