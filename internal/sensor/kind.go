package sensor

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/register"
)

// Kind selects one of the three temperatures.
type Kind string

const (
	KindCore     Kind = "core"
	KindJunction Kind = "junction"
	KindMemory   Kind = "vram"
)

// ParseKind accepts core, junction and vram (or memory).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "core":
		return KindCore, nil
	case "junction", "hotspot":
		return KindJunction, nil
	case "vram", "memory":
		return KindMemory, nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidKind, s)
	}
}

// NeedsRegister reports whether reading the kind requires physical memory.
func (k Kind) NeedsRegister() bool {
	return k == KindJunction || k == KindMemory
}

func (k Kind) offset() register.Offset {
	if k == KindJunction {
		return register.JunctionOffset
	}

	return register.MemoryOffset
}
