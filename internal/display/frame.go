package display

import "fmt"

// Frame is a fixed-capacity text buffer. A write that does not fit whole
// is dropped, so the frame never ends inside an escape sequence or a
// multi-byte character. Dropping is not an error.
type Frame struct {
	buf       []byte
	limit     int
	truncated bool
}

func NewFrame(size int) *Frame {
	return &Frame{
		buf:   make([]byte, 0, size),
		limit: size,
	}
}

// Write appends p if it fits below the current limit. It always reports
// len(p) so that fmt.Fprintf never sees a short write.
func (f *Frame) Write(p []byte) (int, error) {
	if len(f.buf)+len(p) > f.limit {
		f.truncated = true
		return len(p), nil
	}
	f.buf = append(f.buf, p...)

	return len(p), nil
}

func (f *Frame) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Printf appends one formatted piece, all of it or nothing.
func (f *Frame) Printf(format string, args ...any) {
	f.WriteString(fmt.Sprintf(format, args...))
}

// Reserve holds back n bytes at the end of the frame until Release.
func (f *Frame) Reserve(n int) {
	f.limit = max(cap(f.buf)-n, 0)
}

func (f *Frame) Release() {
	f.limit = cap(f.buf)
}

func (f *Frame) Reset() {
	f.buf = f.buf[:0]
	f.limit = cap(f.buf)
	f.truncated = false
}

func (f *Frame) Bytes() []byte {
	return f.buf
}

func (f *Frame) Len() int {
	return len(f.buf)
}

func (f *Frame) Cap() int {
	return cap(f.buf)
}

// Truncated reports whether a write was dropped since the last Reset.
func (f *Frame) Truncated() bool {
	return f.truncated
}
