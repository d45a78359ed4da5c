// Package privilege checks for the rights needed to map physical memory.
package privilege

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	"golang.org/x/sys/unix"
)

var geteuid = unix.Geteuid

// Check fails unless the process runs with an effective user ID of root.
func Check() error {
	if euid := geteuid(); euid != 0 {
		return errors.New().WithData(errors.ErrPrivilege, euid)
	}

	return nil
}
