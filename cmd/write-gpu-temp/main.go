package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/gputemps/internal/config"
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/gpu"
	"codeberg.org/mutker/gputemps/internal/logger"
	"codeberg.org/mutker/gputemps/internal/pci"
	"codeberg.org/mutker/gputemps/internal/privilege"
	"codeberg.org/mutker/gputemps/internal/register"
	"codeberg.org/mutker/gputemps/internal/sensor"
	"github.com/spf13/afero"
)

const (
	name = "write-gpu-temp"

	exitOK      = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs()))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <temp_type> <output_file_path>\n", name)
	fmt.Fprintln(os.Stderr, "  <temp_type>: core, junction, or vram")
}

// run reads sysfs and writes the output file through fs.
func run(args []string, fs afero.Fs) int {
	cfg, err := config.Load(args, config.WithName(name))
	if err != nil {
		if config.IsHelp(err) {
			usage()
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitFailure
	}
	if len(cfg.Args) != 2 {
		usage()
		return exitFailure
	}

	logger.Setup(logger.Options{
		Debug:   cfg.Debug,
		Verbose: cfg.Verbose,
		Level:   string(cfg.LogLevel),
		Service: logger.IsService(),
	})

	kind, err := sensor.ParseKind(cfg.Args[0])
	if err != nil {
		logger.ErrorWithCode(err).Msg("Use 'core', 'junction', or 'vram'")
		return exitFailure
	}
	output := cfg.Args[1]

	if kind.NeedsRegister() {
		if err := privilege.Check(); err != nil {
			logger.ErrorWithCode(err).Msg("Failed to start")
			return exitFailure
		}
	}

	temp, err := readTemperature(fs, cfg, gpu.NewSession(), kind)
	if err != nil {
		logger.ErrorWithCode(err).Str("kind", string(kind)).Msg("Failed to read temperature")
		return exitFailure
	}

	if err := writeTemperature(fs, output, temp); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to write temperature")
		return exitFailure
	}
	logger.Debug().Str("kind", string(kind)).Uint32("temperature", temp).Str("output", output).Msg("Temperature written")

	return exitOK
}

// readTemperature opens the catalog on fs and the NVML session, reads one
// temperature of GPU 0 and releases both again.
func readTemperature(fs afero.Fs, cfg *config.Config, session gpu.Session, kind sensor.Kind) (uint32, error) {
	catalog, err := pci.Enumerate(fs, cfg.SysfsPath)
	if err != nil {
		return 0, err
	}
	defer catalog.Close()

	if err := session.Initialize(); err != nil {
		return 0, err
	}
	defer func() {
		if err := session.Shutdown(); err != nil {
			logger.ErrorWithCode(err).Msg("Failed to shut down NVML")
		}
	}()

	return sensor.NewCollector(session, catalog, register.NewDecoder(cfg.MemPath)).Read(0, kind)
}

// writeTemperature stores temp in millidegrees, as hwmon-style readers
// expect.
func writeTemperature(fs afero.Fs, path string, temp uint32) error {
	data := []byte(fmt.Sprintf("%d\n", temp*1000))
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.New().Wrap(errors.ErrWriteOutput, err).WithData(path)
	}

	return nil
}
