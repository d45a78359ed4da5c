package gpu

import "codeberg.org/mutker/gputemps/internal/pci"

// Session is an NVML session. Devices are addressed by enumeration index
// and are only valid while the session is initialized.
type Session interface {
	Initialize() error
	Shutdown() error
	DeviceCount() (int, error)
	Device(index int) (Device, error)
}

// Device is a handle to one GPU.
type Device interface {
	Index() int
	Name() (string, error)
	CoreTemperature() (uint32, error)
	BusIdentity() (pci.Identity, error)
}
