// Package display composes the temperature table that is redrawn in place
// on every refresh.
package display

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/mutker/gputemps/internal/config"
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/logger"
	"codeberg.org/mutker/gputemps/internal/sensor"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

const (
	separator = "│"
	header    = separator + "  CORE  " + separator + "  JUNC  " + separator + "  VRAM  " + separator + "\n"

	// HeaderLines is the number of lines above the first data row.
	HeaderLines = 2
)

// FrameLines is the height of a frame for count devices.
func FrameLines(count int) int {
	return count + HeaderLines
}

// ColorProfile resolves a color mode against the environment of out.
func ColorProfile(mode config.ColorMode, out io.Writer) termenv.Profile {
	switch mode {
	case config.ColorAlways:
		return termenv.ANSI
	case config.ColorNever:
		return termenv.Ascii
	default:
		return termenv.NewOutput(out).EnvColorProfile()
	}
}

// Renderer writes frames to out. The cursor is moved back to the top of the
// frame after each write so the next frame overwrites it.
type Renderer struct {
	out     io.Writer
	frame   *Frame
	profile termenv.Profile
	odd     bool
	lines   int
}

func NewRenderer(out io.Writer, bufferSize int, profile termenv.Profile) *Renderer {
	return &Renderer{
		out:     out,
		frame:   NewFrame(bufferSize),
		profile: profile,
	}
}

// Render composes one frame for samples and writes it in a single call.
// Room for the cursor-up sequence is held back, so a frame that overflows
// loses trailing rows but still returns the cursor to its top line.
func (r *Renderer) Render(samples []sensor.Sample) error {
	r.odd = !r.odd
	r.frame.Reset()
	r.frame.Reserve(len(ansi.CursorUp(FrameLines(len(samples)))))

	marker := "* "
	if r.odd {
		marker = "  "
	}
	r.frame.Printf("\n%s%s", marker, header)

	for _, s := range samples {
		r.frame.Printf("%d %s %s  %s %s  %s %s  %s\n",
			s.Index, separator,
			r.cell(s.Core, CoreThresholds), separator,
			r.cell(s.Junction, JunctionThresholds), separator,
			r.cell(s.Memory, MemoryThresholds), separator)
		if r.frame.Truncated() {
			break
		}
	}

	lines := bytes.Count(r.frame.Bytes(), []byte("\n"))
	r.frame.Release()
	if lines > 0 {
		r.frame.WriteString(ansi.CursorUp(lines))
	}

	if r.frame.Truncated() {
		logger.Debug().
			Int("capacity", r.frame.Cap()).
			Int("devices", len(samples)).
			Int("rows", max(lines-HeaderLines, 0)).
			Msg("Frame truncated")
	}

	if _, err := r.out.Write(r.frame.Bytes()); err != nil {
		return errors.New().Wrap(errors.ErrTerminal, err)
	}
	r.lines = lines

	return nil
}

// Lines is the height of the last frame written, or 0 before the first.
func (r *Renderer) Lines() int {
	return r.lines
}

func (r *Renderer) cell(temp uint32, t Thresholds) string {
	return r.profile.String(fmt.Sprintf("%3d°C", temp)).
		Foreground(Classify(temp, t).Color()).
		String()
}
