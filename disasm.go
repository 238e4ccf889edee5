package main

import (
	"fmt"
	"io"

	"github.com/nf/c8/chip8"
)

// disasm writes a listing of rom as loaded at chip8.ProgramStart,
// one instruction word per line.
func disasm(w io.Writer, rom []byte) error {
	for i := 0; i < len(rom); i += 2 {
		addr := chip8.ProgramStart + i
		if i+1 == len(rom) {
			_, err := fmt.Fprintf(w, "%.3x  %.2x    .byte $%02X\n", addr, rom[i], rom[i])
			return err
		}
		in := chip8.Decode(uint16(rom[i])<<8 | uint16(rom[i+1]))
		if _, err := fmt.Fprintf(w, "%.3x  %.4x  %v\n", addr, in.Word, in); err != nil {
			return err
		}
	}
	return nil
}
