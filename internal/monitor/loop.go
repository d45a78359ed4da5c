package monitor

import (
	"time"

	"codeberg.org/mutker/gputemps/internal/logger"
	"codeberg.org/mutker/gputemps/internal/sensor"
)

type Collector interface {
	CollectAll(count int) ([]sensor.Sample, error)
}

type Renderer interface {
	Render(samples []sensor.Sample) error
}

// Waiter paces the loop. Wait returns true when the user asked to stop.
type Waiter interface {
	Wait(timeout time.Duration) bool
}

// Loop collects and renders one frame per tick until the run state is
// cleared or the user asks to stop. A tick always runs to completion.
type Loop struct {
	Collector Collector
	Renderer  Renderer
	Input     Waiter
	RunState  *RunState
	Interval  time.Duration
	Count     int
}

// Run returns nil on a requested stop and the first collection or render
// error otherwise.
func (l *Loop) Run() error {
	for tick := 1; l.RunState.Running(); tick++ {
		samples, err := l.Collector.CollectAll(l.Count)
		if err != nil {
			return err
		}

		if err := l.Renderer.Render(samples); err != nil {
			return err
		}

		if l.Input.Wait(l.Interval) {
			logger.Debug().Int("tick", tick).Msg("Stop requested from input")
			return nil
		}
	}

	logger.Debug().Msg("Run state cleared")

	return nil
}
