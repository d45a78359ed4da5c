package register

import (
	"encoding/binary"
	"os"

	"codeberg.org/mutker/gputemps/internal/errors"
	"golang.org/x/sys/unix"
)

// page is one read-only shared mapping of the physical memory device.
// Callers defer Close right after mapPage succeeds.
type page struct {
	file *os.File
	data []byte
}

func mapPage(path string, offset int64, size int) (*page, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|unix.O_SYNC, 0)
	if err != nil {
		return nil, err
	}

	data, err := unix.Mmap(int(file.Fd()), offset, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, errors.New().Wrap(ErrMapFailed, err).WithData(offset)
	}

	return &page{file: file, data: data}, nil
}

// Uint32 reads the little-endian word at byte offset off within the page.
func (p *page) Uint32(off int) (uint32, error) {
	if p.data == nil {
		return 0, errors.New().WithMessage(ErrReadFailed, "page is not mapped")
	}
	if off < 0 || off+4 > len(p.data) {
		return 0, errors.New().WithData(ErrPageBounds, off)
	}

	return binary.LittleEndian.Uint32(p.data[off : off+4]), nil
}

// Close unmaps the page and closes the device. It is safe to call twice.
func (p *page) Close() error {
	var err error

	if p.data != nil {
		err = unix.Munmap(p.data)
		p.data = nil
	}

	if p.file != nil {
		if cerr := p.file.Close(); err == nil {
			err = cerr
		}
		p.file = nil
	}

	return err
}
