// Command c8 executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/host"
)

func main() {
	log.SetPrefix("c8: ")
	log.SetFlags(0)

	var (
		cliFlag    = flag.Bool("cli", false, "use the terminal instead of a window")
		devFlag    = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag  = flag.Bool("debug", false, "enable debugger (implies -dev)")
		disasmFlag = flag.Bool("disasm", false, "print a disassembly of the program and exit")
		hzFlag     = flag.Int("hz", host.DefaultHz, "execute `n` instructions per second")
		traceFlag  = flag.Bool("v", false, "log each instruction executed")

		indexOverflowFlag = flag.Bool("quirk_index_overflow", false, "ADD I, Vx sets VF on overflow")
		shiftVYFlag       = flag.Bool("quirk_shift_vy", false, "SHR and SHL shift Vy into Vx")
		logicVFFlag       = flag.Bool("quirk_logic_vf", false, "OR, AND and XOR clear VF")
		memoryIFlag       = flag.Bool("quirk_memory_i", false, "LD [I], Vx and LD Vx, [I] advance I")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	rom, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	if *disasmFlag {
		if err := disasm(os.Stdout, rom); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := host.Config{
		GUI:      !*cliFlag,
		Terminal: *cliFlag,
		Dev:      *devFlag || *debugFlag,
		Trace:    *traceFlag,
		Hz:       *hzFlag,
		Quirks: chip8.Quirks{
			IndexOverflow:     *indexOverflowFlag,
			ShiftUsesVY:       *shiftVYFlag,
			LogicResetsVF:     *logicVFFlag,
			MemoryIncrementsI: *memoryIFlag,
		},
	}

	if cfg.Dev {
		if err := devMode(cfg, *debugFlag, flag.Arg(0), rom); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = host.NewRunner(cfg, nil).Run(rom)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}
