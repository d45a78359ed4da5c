package monitor

import "sync/atomic"

// State is the lifecycle stage of a Monitor.
type State int

const (
	Uninit State = iota
	Ready
	Running
	Stopping
	Done
)

func (s State) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// RunState is the liveness flag shared between signal delivery and the
// render loop.
type RunState struct {
	running atomic.Bool
}

func NewRunState() *RunState {
	r := &RunState{}
	r.running.Store(true)

	return r
}

func (r *RunState) Running() bool {
	return r.running.Load()
}

func (r *RunState) Stop() {
	r.running.Store(false)
}
