// Package monitor drives the temperature table from startup to shutdown.
package monitor

import (
	"io"
	"os"
	"os/signal"
	"time"

	"codeberg.org/mutker/gputemps/internal/display"
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/gpu"
	"codeberg.org/mutker/gputemps/internal/logger"
	"codeberg.org/mutker/gputemps/internal/sensor"
	"codeberg.org/mutker/gputemps/internal/term"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

// Catalog is the bus catalog as the monitor sees it.
type Catalog interface {
	sensor.Correlator
	Close() error
}

type Options struct {
	Interval   time.Duration
	BufferSize int
	Profile    termenv.Profile

	// Out receives frames and cursor control.
	Out   io.Writer
	Input Waiter

	Privilege   func() error
	OpenCatalog func() (Catalog, error)
	Session     gpu.Session
	Registers   sensor.RegisterReader

	// Height reports the terminal height. Nil when Out is not a terminal.
	Height func() (int, error)

	// Log defaults to the package-level logger.
	Log logger.Logger
}

type Monitor struct {
	opts  Options
	log   logger.Logger
	state State
	run   *RunState

	catalog Catalog
	session gpu.Session
	count   int

	cursor   *term.Cursor
	renderer *display.Renderer
	signals  chan os.Signal
}

func New(opts Options) *Monitor {
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}

	return &Monitor{
		opts:   opts,
		log:    log,
		run:    NewRunState(),
		cursor: term.NewCursor(opts.Out),
	}
}

// RunState exposes the liveness flag so callers can stop the loop.
func (m *Monitor) RunState() *RunState {
	return m.run
}

func (m *Monitor) State() State {
	return m.state
}

// Run performs the whole lifecycle and returns the process exit code.
// Every path, successful or not, ends in shutdown.
func (m *Monitor) Run() int {
	defer m.shutdown()

	if err := m.init(); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to start")
		return ExitFailure
	}

	if err := m.start(); err != nil {
		logger.ErrorWithCode(err).Msg("Failed to prepare terminal")
		return ExitFailure
	}

	loop := &Loop{
		Collector: sensor.NewCollector(m.session, m.catalog, m.opts.Registers),
		Renderer:  m.renderer,
		Input:     m.opts.Input,
		RunState:  m.run,
		Interval:  m.opts.Interval,
		Count:     m.count,
	}
	if err := loop.Run(); err != nil {
		logger.ErrorWithCode(err).Msg("Error in main loop")
		return ExitFailure
	}

	return ExitOK
}

func (m *Monitor) init() error {
	if err := m.opts.Privilege(); err != nil {
		return err
	}

	catalog, err := m.opts.OpenCatalog()
	if err != nil {
		return err
	}
	m.catalog = catalog

	if err := m.opts.Session.Initialize(); err != nil {
		return err
	}
	m.session = m.opts.Session

	count, err := m.session.DeviceCount()
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New().New(errors.ErrNoDevices)
	}
	m.count = count

	for i := 0; i < count; i++ {
		m.logDevice(i)
	}

	m.setState(Ready)

	return nil
}

func (m *Monitor) logDevice(index int) {
	device, err := m.session.Device(index)
	if err != nil {
		return
	}

	name, err := device.Name()
	if err != nil {
		m.log.Debug().Err(err).Int("index", index).Msg("Failed to get device name")
		return
	}
	m.log.Debug().Int("index", index).Str("name", name).Msg("Found GPU")
}

func (m *Monitor) start() error {
	m.signals = make(chan os.Signal, 1)
	signal.Notify(m.signals, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	go func(signals <-chan os.Signal) {
		for sig := range signals {
			m.log.Info().Str("signal", sig.String()).Msg("Received termination signal")
			m.run.Stop()
		}
	}(m.signals)

	m.warnHeight()

	m.renderer = display.NewRenderer(m.opts.Out, m.opts.BufferSize, m.opts.Profile)
	if err := m.cursor.Hide(); err != nil {
		return err
	}

	m.setState(Running)

	return nil
}

func (m *Monitor) warnHeight() {
	if m.opts.Height == nil {
		return
	}

	rows, err := m.opts.Height()
	if err != nil {
		m.log.Debug().Err(err).Msg("Failed to get terminal size")
		return
	}

	if need := display.FrameLines(m.count) + 1; rows < need {
		m.log.Warn().
			Int("rows", rows).
			Int("needed", need).
			Msg("Terminal is too short for the table, output will scroll")
	}
}

// shutdown is the only cleanup path. Each step tolerates the resources of
// a partial startup.
func (m *Monitor) shutdown() {
	if m.state == Done {
		return
	}
	m.setState(Stopping)

	if m.signals != nil {
		signal.Stop(m.signals)
		close(m.signals)
		m.signals = nil
	}

	if m.session != nil {
		if err := m.session.Shutdown(); err != nil {
			logger.ErrorWithCode(err).Msg("Failed to shut down NVML")
		}
		m.session = nil
	}

	if m.catalog != nil {
		if err := m.catalog.Close(); err != nil {
			logger.ErrorWithCode(err).Msg("Failed to release PCI catalog")
		}
		m.catalog = nil
	}

	if m.renderer != nil && m.renderer.Lines() > 0 {
		if err := m.cursor.Down(m.renderer.Lines()); err != nil {
			m.log.Debug().Err(err).Msg("Failed to move cursor")
		}
	}
	if err := m.cursor.Show(); err != nil {
		m.log.Debug().Err(err).Msg("Failed to restore cursor")
	}

	m.setState(Done)
}

func (m *Monitor) setState(s State) {
	m.log.Debug().Str("from", m.state.String()).Str("to", s.String()).Msg("State change")
	m.state = s
}
