// Package register reads GPU temperatures that NVML does not expose from
// memory-mapped status registers in BAR0.
//
// The offsets and bit fields are calibrated for one hardware generation
// and are not discovered at runtime. Other GPUs will usually produce
// implausible values, which Read rejects as out of range.
package register

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/logger"
	"golang.org/x/sys/unix"
)

// Offset is a register offset relative to BAR0.
type Offset uint32

const (
	// JunctionOffset holds the hotspot temperature in bits 15:8.
	JunctionOffset Offset = 0x0002046C
	// MemoryOffset holds the memory temperature in bits 11:0, in 1/32 °C.
	MemoryOffset Offset = 0x0000E2A8

	// MaxTemperature is the first decoded value treated as "not ready".
	MaxTemperature = 0x7f
)

func (o Offset) String() string {
	switch o {
	case JunctionOffset:
		return "junction"
	case MemoryOffset:
		return "memory"
	default:
		return "unknown"
	}
}

type rule func(raw uint32) uint32

var rules = map[Offset]rule{
	JunctionOffset: decodeJunction,
	MemoryOffset:   decodeMemory,
}

func decodeJunction(raw uint32) uint32 {
	return (raw >> 8) & 0xff
}

func decodeMemory(raw uint32) uint32 {
	return (raw & 0x00000fff) / 0x20
}

// Decode applies the bit-field rule for offset to a raw register word.
func Decode(offset Offset, raw uint32) (uint32, error) {
	errFactory := errors.New()

	decode, ok := rules[offset]
	if !ok {
		return 0, errFactory.WithData(ErrUnknownOffset, uint32(offset))
	}

	temp := decode(raw)
	if temp >= MaxTemperature {
		return 0, errFactory.WithData(ErrOutOfRange, temp)
	}

	return temp, nil
}

// Decoder maps and reads registers through the physical memory device.
type Decoder struct {
	MemPath  string
	PageSize int
}

func NewDecoder(memPath string) *Decoder {
	return &Decoder{
		MemPath:  memPath,
		PageSize: unix.Getpagesize(),
	}
}

// Read maps the page holding base+offset, reads one word and decodes it.
// Nothing is cached; every call maps and unmaps its own page. Address
// arithmetic is 32-bit, as the BAR0 window is below 4 GiB.
func (d *Decoder) Read(base uint64, offset Offset) (uint32, error) {
	errFactory := errors.New()

	if _, ok := rules[offset]; !ok {
		return 0, errFactory.WithData(ErrUnknownOffset, uint32(offset))
	}

	addr := uint32(base) + uint32(offset)
	pageBase := addr &^ uint32(d.PageSize-1)

	p, err := mapPage(d.MemPath, int64(pageBase), d.PageSize)
	if err != nil {
		return 0, errFactory.Wrap(ErrMapFailed, err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Debug().Err(err).Msg("Failed to release register page")
		}
	}()

	raw, err := p.Uint32(int(addr - pageBase))
	if err != nil {
		return 0, errFactory.Wrap(ErrReadFailed, err)
	}

	logger.Debug().
		Str("register", offset.String()).
		Uint32("address", addr).
		Uint32("raw", raw).
		Msg("Register read")

	return Decode(offset, raw)
}
