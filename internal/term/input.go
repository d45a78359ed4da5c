package term

import (
	"time"

	"codeberg.org/mutker/gputemps/internal/logger"
	"golang.org/x/sys/unix"
)

// Input waits on a file descriptor, normally standard input, for a line
// terminator.
type Input struct {
	fd       int
	disabled bool
	sleep    func(time.Duration)
}

func NewInput(fd int) *Input {
	return &Input{
		fd:    fd,
		sleep: time.Sleep,
	}
}

// Wait blocks for at most timeout and reports whether a newline was read.
// Any other byte ends the wait early without a stop. An interrupted poll
// also ends the wait early. Once the descriptor reaches end of file or
// fails, input is no longer watched and Wait only sleeps.
func (in *Input) Wait(timeout time.Duration) bool {
	if in.disabled {
		in.sleep(timeout)
		return false
	}

	start := time.Now()
	fds := []unix.PollFd{{Fd: int32(in.fd), Events: unix.POLLIN}}
	count, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return false
		}
		in.disable(err)
		in.sleep(timeout - time.Since(start))
		return false
	}
	if count == 0 {
		return false
	}

	var buf [1]byte
	n, err := unix.Read(in.fd, buf[:])
	switch {
	case err == unix.EINTR || err == unix.EAGAIN:
		return false
	case err != nil:
		in.disable(err)
	case n == 0:
		in.disable(nil)
	default:
		return buf[0] == '\n'
	}

	in.sleep(timeout - time.Since(start))

	return false
}

// Disabled reports whether input watching was given up.
func (in *Input) Disabled() bool {
	return in.disabled
}

func (in *Input) disable(err error) {
	in.disabled = true
	logger.Debug().Err(err).Int("fd", in.fd).Msg("Input closed, no longer watching for newline")
}
