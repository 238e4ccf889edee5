package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/c8/host"
)

// devMode runs rom and reloads it from romFile whenever the file changes.
// If debug is set the debugger UI takes over the terminal.
func devMode(cfg host.Config, debug bool, romFile string, rom []byte) error {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	var (
		d       *debugger
		stateFn host.StateFunc
	)
	if debug {
		// The debugger owns the terminal, so it shows the display itself.
		d = newDebugger(cfg.Terminal)
		stateFn = d.StateFunc
		cfg.Terminal = false
	}
	runner := host.NewRunner(cfg, stateFn)
	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		if d.screen != nil {
			go d.showFrames(runner.Frames(), runner.Done())
		}
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("c8: ")
			runner.Exit()
		}()
	}

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reload %s", filepath.Base(romFile))
				if err := runner.Swap(rom); err != nil {
					log.Printf("dev: %v", err)
				}
			case ev := <-watcher.Event:
				if ev.Name == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-runner.Done():
				return
			}
		}
	}()

	log.Printf("dev: start %s", filepath.Base(romFile))
	return runner.Run(rom)
}
