package display

import "github.com/muesli/termenv"

// Level is the colour class of a temperature.
type Level int

const (
	Nominal Level = iota
	Warning
	Danger
)

func (l Level) String() string {
	switch l {
	case Nominal:
		return "nominal"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "unknown"
	}
}

// Color returns the foreground colour the table uses for the level.
func (l Level) Color() termenv.Color {
	switch l {
	case Warning:
		return termenv.ANSIYellow
	case Danger:
		return termenv.ANSIRed
	default:
		return termenv.ANSIGreen
	}
}

// Thresholds are the warning and danger limits of one column, in °C.
type Thresholds struct {
	Warn   uint32
	Danger uint32
}

var (
	CoreThresholds     = Thresholds{Warn: 70, Danger: 85}
	JunctionThresholds = Thresholds{Warn: 80, Danger: 95}
	MemoryThresholds   = Thresholds{Warn: 80, Danger: 95}
)

// Classify places temp in its level. Both limits are inclusive.
func Classify(temp uint32, t Thresholds) Level {
	switch {
	case temp >= t.Danger:
		return Danger
	case temp >= t.Warn:
		return Warning
	default:
		return Nominal
	}
}
