// Package pci enumerates bus devices from sysfs and matches them against
// the bus identity NVML reports for a GPU.
package pci

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/logger"
	"github.com/spf13/afero"
)

// Catalog is the set of bus devices found by a single Enumerate call.
type Catalog struct {
	records []*Record
	closed  bool
}

// Enumerate scans root (normally /sys/bus/pci/devices) once. A catalog
// that cannot be listed is unusable; individual malformed entries are
// skipped.
func Enumerate(fs afero.Fs, root string) (*Catalog, error) {
	errFactory := errors.New()

	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, errFactory.Wrap(ErrEnumerationFailed, err)
	}

	c := &Catalog{records: make([]*Record, 0, len(entries))}
	for _, entry := range entries {
		r, err := newRecord(fs, root, entry.Name())
		if err != nil {
			logger.Debug().Err(err).Msg("Skipping PCI entry")
			continue
		}
		c.records = append(c.records, r)
	}

	logger.Debug().Int("devices", len(c.records)).Str("root", root).Msg("PCI bus scanned")

	return c, nil
}

// Records returns the catalog entries in scan order.
func (c *Catalog) Records() []*Record {
	return c.records
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Correlate returns the first record whose refreshed identity equals
// target. Records that fail to refresh cannot match.
func (c *Catalog) Correlate(target Identity) (*Record, error) {
	errFactory := errors.New()

	if c == nil || c.closed {
		return nil, errFactory.New(ErrCatalogClosed)
	}

	for _, r := range c.records {
		if err := r.Refresh(); err != nil {
			logger.Debug().Err(err).Str("slot", r.Slot).Msg("Failed to refresh PCI device")
			continue
		}

		if r.Identity() == target {
			return r, nil
		}
	}

	return nil, errFactory.WithData(ErrDeviceNotFound, target.String())
}

// Close releases the catalog. It is safe to call more than once.
func (c *Catalog) Close() error {
	if c == nil || c.closed {
		return nil
	}

	c.records = nil
	c.closed = true

	return nil
}
