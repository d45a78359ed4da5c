package main

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/mutker/gputemps/internal/config"
	"codeberg.org/mutker/gputemps/internal/display"
	"codeberg.org/mutker/gputemps/internal/gpu"
	"codeberg.org/mutker/gputemps/internal/logger"
	"codeberg.org/mutker/gputemps/internal/monitor"
	"codeberg.org/mutker/gputemps/internal/pci"
	"codeberg.org/mutker/gputemps/internal/privilege"
	"codeberg.org/mutker/gputemps/internal/register"
	"codeberg.org/mutker/gputemps/internal/term"
	"github.com/spf13/afero"
)

// main exits only after run has returned, so every deferred cleanup,
// including restoring the cursor, has already happened.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args, config.WithName("gputemps"))
	if err != nil {
		if config.IsHelp(err) {
			return monitor.ExitOK
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return monitor.ExitFailure
	}

	logger.Setup(logger.Options{
		Debug:   cfg.Debug,
		Verbose: cfg.Verbose,
		Level:   string(cfg.LogLevel),
		Service: logger.IsService(),
	})
	logger.Debug().
		Int("interval", cfg.Interval).
		Str("mem_path", cfg.MemPath).
		Str("sysfs_path", cfg.SysfsPath).
		Msg("Config loaded")

	stdout := int(os.Stdout.Fd())
	opts := monitor.Options{
		Interval:   time.Duration(cfg.Interval) * time.Second,
		BufferSize: cfg.BufferSize,
		Profile:    display.ColorProfile(cfg.Color, os.Stdout),
		Out:        os.Stdout,
		Input:      term.NewInput(int(os.Stdin.Fd())),
		Privilege:  privilege.Check,
		OpenCatalog: func() (monitor.Catalog, error) {
			catalog, err := pci.Enumerate(afero.NewOsFs(), cfg.SysfsPath)
			if err != nil {
				return nil, err
			}
			return catalog, nil
		},
		Session:   gpu.NewSession(),
		Registers: register.NewDecoder(cfg.MemPath),
	}
	if term.IsTerminal(stdout) {
		opts.Height = func() (int, error) {
			return term.Height(stdout)
		}
	}

	return monitor.New(opts).Run()
}
