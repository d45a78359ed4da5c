// Package sensor collects the three GPU temperatures for a device index by
// joining the NVML view of a GPU with its PCI catalog record.
package sensor

import (
	"fmt"

	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/gpu"
	"codeberg.org/mutker/gputemps/internal/pci"
	"codeberg.org/mutker/gputemps/internal/register"
)

// Sample is one reading of a GPU, in whole degrees Celsius.
type Sample struct {
	Index    int
	Core     uint32
	Junction uint32
	Memory   uint32
}

// Correlator finds the bus record for a bus identity.
type Correlator interface {
	Correlate(target pci.Identity) (*pci.Record, error)
}

// RegisterReader reads one calibrated temperature register.
type RegisterReader interface {
	Read(base uint64, offset register.Offset) (uint32, error)
}

type Collector struct {
	session gpu.Session
	catalog Correlator
	decoder RegisterReader
}

func NewCollector(session gpu.Session, catalog Correlator, decoder RegisterReader) *Collector {
	return &Collector{
		session: session,
		catalog: catalog,
		decoder: decoder,
	}
}

// Collect reads all three temperatures of one GPU. The first failing step
// aborts the sample.
func (c *Collector) Collect(index int) (Sample, error) {
	device, err := c.session.Device(index)
	if err != nil {
		return Sample{}, collectError(index, err)
	}

	core, err := device.CoreTemperature()
	if err != nil {
		return Sample{}, collectError(index, err)
	}

	record, err := c.locate(device)
	if err != nil {
		return Sample{}, collectError(index, err)
	}

	junction, err := c.decoder.Read(record.BaseAddress, register.JunctionOffset)
	if err != nil {
		return Sample{}, collectError(index, err)
	}

	memory, err := c.decoder.Read(record.BaseAddress, register.MemoryOffset)
	if err != nil {
		return Sample{}, collectError(index, err)
	}

	return Sample{
		Index:    index,
		Core:     core,
		Junction: junction,
		Memory:   memory,
	}, nil
}

// CollectAll collects devices [0, count). It returns either every sample
// or none.
func (c *Collector) CollectAll(count int) ([]Sample, error) {
	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		sample, err := c.Collect(i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// Read returns a single temperature of one GPU, touching the PCI catalog
// and physical memory only for register-backed kinds.
func (c *Collector) Read(index int, kind Kind) (uint32, error) {
	device, err := c.session.Device(index)
	if err != nil {
		return 0, collectError(index, err)
	}

	var temp uint32
	switch kind {
	case KindCore:
		temp, err = device.CoreTemperature()
	case KindJunction, KindMemory:
		var record *pci.Record
		if record, err = c.locate(device); err == nil {
			temp, err = c.decoder.Read(record.BaseAddress, kind.offset())
		}
	default:
		err = errors.New().WithData(errors.ErrInvalidKind, string(kind))
	}
	if err != nil {
		return 0, collectError(index, err)
	}

	return temp, nil
}

func (c *Collector) locate(device gpu.Device) (*pci.Record, error) {
	identity, err := device.BusIdentity()
	if err != nil {
		return nil, err
	}

	return c.catalog.Correlate(identity)
}

func collectError(index int, err error) error {
	return errors.New().Wrap(errors.ErrCollect, err).WithMessage(fmt.Sprintf("GPU %d", index))
}
