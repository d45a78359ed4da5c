package term

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	xterm "golang.org/x/term"
)

func IsTerminal(fd int) bool {
	return xterm.IsTerminal(fd)
}

// Height returns the number of rows of the terminal on fd.
func Height(fd int) (int, error) {
	_, height, err := xterm.GetSize(fd)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrTerminal, err)
	}

	return height, nil
}
