package display_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"codeberg.org/mutker/gputemps/internal/config"
	"codeberg.org/mutker/gputemps/internal/display"
	"codeberg.org/mutker/gputemps/internal/sensor"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	red    = "\x1b[31m"
	reset  = "\x1b[0m"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		temp       uint32
		thresholds display.Thresholds
		want       display.Level
	}{
		{69, display.CoreThresholds, display.Nominal},
		{70, display.CoreThresholds, display.Warning},
		{84, display.CoreThresholds, display.Warning},
		{85, display.CoreThresholds, display.Danger},
		{79, display.JunctionThresholds, display.Nominal},
		{80, display.JunctionThresholds, display.Warning},
		{95, display.JunctionThresholds, display.Danger},
		{0, display.MemoryThresholds, display.Nominal},
		{94, display.MemoryThresholds, display.Warning},
		{126, display.MemoryThresholds, display.Danger},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, display.Classify(tt.temp, tt.thresholds), "%d°C", tt.temp)
	}
}

func TestLevelColor(t *testing.T) {
	assert.Equal(t, termenv.ANSIGreen, display.Nominal.Color())
	assert.Equal(t, termenv.ANSIYellow, display.Warning.Color())
	assert.Equal(t, termenv.ANSIRed, display.Danger.Color())
	assert.Equal(t, "danger", display.Danger.String())
}

func TestFrameDropsWholeWrites(t *testing.T) {
	f := display.NewFrame(8)

	n, err := f.WriteString("0123")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, f.Truncated())

	n, err = f.WriteString("456789")
	require.NoError(t, err)
	assert.Equal(t, 6, n, "short writes are never reported")
	assert.True(t, f.Truncated())
	assert.Equal(t, "0123", string(f.Bytes()), "nothing of the oversized write is kept")

	f.Printf("%d", 42)
	assert.Equal(t, "012342", string(f.Bytes()))

	f.Reset()
	assert.False(t, f.Truncated())
	assert.Zero(t, f.Len())
	assert.Equal(t, 8, f.Cap())
}

func TestFrameReserve(t *testing.T) {
	f := display.NewFrame(8)
	f.Reserve(3)

	f.Printf("abcd")
	f.Printf("ef")
	assert.Equal(t, "abcd", string(f.Bytes()))
	assert.True(t, f.Truncated())

	f.Release()
	f.WriteString("xyz")
	assert.Equal(t, "abcdxyz", string(f.Bytes()))

	f.Reserve(3)
	f.Reset()
	f.WriteString("01234567")
	assert.Equal(t, 8, f.Len(), "Reset lifts the reservation")
}

func TestRenderSingleDevice(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.DefaultBufferSize, termenv.ANSI)

	require.NoError(t, r.Render([]sensor.Sample{{Index: 0, Core: 65, Junction: 72, Memory: 60}}))

	want := "\n  │  CORE  │  JUNC  │  VRAM  │\n" +
		"0 │ " + green + " 65°C" + reset + "  │ " +
		green + " 72°C" + reset + "  │ " +
		green + " 60°C" + reset + "  │\n" +
		"\x1b[3A"
	assert.Equal(t, want, out.String())
	assert.Equal(t, 3, r.Lines())
}

func TestRenderColors(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.DefaultBufferSize, termenv.ANSI)

	require.NoError(t, r.Render([]sensor.Sample{{Index: 1, Core: 70, Junction: 95, Memory: 79}}))

	s := out.String()
	assert.Contains(t, s, yellow+" 70°C"+reset)
	assert.Contains(t, s, red+" 95°C"+reset)
	assert.Contains(t, s, green+" 79°C"+reset)
	assert.Contains(t, s, "\n1 │ ")
}

func TestRenderCursorMath(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.DefaultBufferSize, termenv.Ascii)

	samples := []sensor.Sample{
		{Index: 0, Core: 40, Junction: 50, Memory: 50},
		{Index: 1, Core: 41, Junction: 51, Memory: 51},
		{Index: 2, Core: 42, Junction: 52, Memory: 52},
	}
	require.NoError(t, r.Render(samples))

	assert.True(t, strings.HasSuffix(out.String(), "\x1b[5A"))
	assert.Equal(t, 5, r.Lines())
	assert.Equal(t, 5, display.FrameLines(3))
	assert.Equal(t, 5, strings.Count(out.String(), "\n"), "one leading newline, header and three rows")
}

func TestRenderMarkerAlternates(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.DefaultBufferSize, termenv.Ascii)
	samples := []sensor.Sample{{Index: 0, Core: 30, Junction: 30, Memory: 30}}

	var markers []string
	for i := 0; i < 4; i++ {
		out.Reset()
		require.NoError(t, r.Render(samples))
		markers = append(markers, out.String()[1:3])
	}

	assert.Equal(t, []string{"  ", "* ", "  ", "* "}, markers)
}

func TestRenderWithoutColor(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.DefaultBufferSize, termenv.Ascii)

	require.NoError(t, r.Render([]sensor.Sample{{Index: 0, Core: 90, Junction: 90, Memory: 90}}))

	assert.Equal(t, "\n  │  CORE  │  JUNC  │  VRAM  │\n0 │  90°C  │  90°C  │  90°C  │\n\x1b[3A", out.String())
}

// sgrPattern matches one complete colour sequence.
var sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderTruncatesLargeFrames(t *testing.T) {
	for _, count := range []int{4, 16} {
		var out bytes.Buffer
		r := display.NewRenderer(&out, config.MinBufferSize, termenv.ANSI)

		samples := make([]sensor.Sample, count)
		for i := range samples {
			samples[i] = sensor.Sample{Index: i, Core: 90, Junction: 96, Memory: 96}
		}

		require.NoError(t, r.Render(samples))

		s := out.String()
		assert.LessOrEqual(t, len(s), config.MinBufferSize)
		assert.True(t, utf8.ValidString(s), "no multi-byte character is split")

		// Three hot rows fit in 256 bytes next to the header and cursor-up.
		assert.Equal(t, 3, strings.Count(s, reset+"  │\n"), "%d devices", count)
		assert.True(t, strings.HasSuffix(s, "\x1b[5A"), "%d devices: %q", count, s[len(s)-8:])
		assert.Equal(t, 5, r.Lines())

		rest := sgrPattern.ReplaceAllString(strings.TrimSuffix(s, "\x1b[5A"), "")
		assert.NotContains(t, rest, "\x1b", "every escape sequence is complete")
	}
}

func TestRenderFullFrameStillFits(t *testing.T) {
	var out bytes.Buffer
	r := display.NewRenderer(&out, config.MinBufferSize, termenv.ANSI)

	samples := make([]sensor.Sample, 3)
	for i := range samples {
		samples[i] = sensor.Sample{Index: i, Core: 90, Junction: 96, Memory: 96}
	}

	require.NoError(t, r.Render(samples))
	assert.True(t, strings.HasSuffix(out.String(), "\x1b[5A"))
	assert.Equal(t, 3, strings.Count(out.String(), "\x1b[31m 90°C"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestRenderWriteError(t *testing.T) {
	r := display.NewRenderer(failingWriter{}, config.DefaultBufferSize, termenv.Ascii)

	err := r.Render([]sensor.Sample{{Index: 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, r.Lines())
}

func TestColorProfile(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	var out bytes.Buffer

	assert.Equal(t, termenv.ANSI, display.ColorProfile(config.ColorAlways, &out))
	assert.Equal(t, termenv.Ascii, display.ColorProfile(config.ColorNever, &out))
	assert.Equal(t, termenv.Ascii, display.ColorProfile(config.ColorAuto, &out), "a buffer is not a terminal")
}
