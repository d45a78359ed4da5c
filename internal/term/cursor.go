// Package term controls the cursor of the output terminal and watches
// standard input for a stop request.
package term

import (
	"io"

	"codeberg.org/mutker/gputemps/internal/errors"
	"github.com/charmbracelet/x/ansi"
)

// Cursor tracks whether the cursor was hidden so that it is shown again
// exactly once.
type Cursor struct {
	out    io.Writer
	hidden bool
}

func NewCursor(out io.Writer) *Cursor {
	return &Cursor{out: out}
}

func (c *Cursor) Hide() error {
	if err := c.write(ansi.HideCursor); err != nil {
		return err
	}
	c.hidden = true

	return nil
}

// Show makes the cursor visible again. It does nothing unless Hide
// succeeded earlier.
func (c *Cursor) Show() error {
	if !c.hidden {
		return nil
	}
	if err := c.write(ansi.ShowCursor); err != nil {
		return err
	}
	c.hidden = false

	return nil
}

// Down moves the cursor n lines down, past a frame that left it at the top.
func (c *Cursor) Down(n int) error {
	if n <= 0 {
		return nil
	}

	return c.write(ansi.CursorDown(n))
}

func (c *Cursor) Hidden() bool {
	return c.hidden
}

func (c *Cursor) write(seq string) error {
	if _, err := io.WriteString(c.out, seq); err != nil {
		return errors.New().Wrap(errors.ErrTerminal, err)
	}

	return nil
}
