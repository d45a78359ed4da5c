package gpu

import (
	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/pci"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type nvmlWrapper struct {
	initialized bool
}

// NewSession returns an uninitialized NVML session.
func NewSession() Session {
	return &nvmlWrapper{}
}

func (w *nvmlWrapper) Initialize() error {
	errFactory := errors.New()
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	errFactory := errors.New()
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) DeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized {
		return 0, errFactory.New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) Device(index int) (Device, error) {
	errFactory := errors.New()
	if !w.initialized {
		return nil, errFactory.New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret)).WithData(index)
	}

	return &handle{index: index, device: device}, nil
}

type handle struct {
	index  int
	device nvml.Device
}

func (h *handle) Index() int {
	return h.index
}

func (h *handle) Name() (string, error) {
	name, ret := h.device.GetName()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return name, nil
}

func (h *handle) CoreTemperature() (uint32, error) {
	temp, ret := h.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrTemperatureReadFailed, newNVMLError(ret)).WithData(h.index)
	}

	return temp, nil
}

func (h *handle) BusIdentity() (pci.Identity, error) {
	info, ret := h.device.GetPciInfo()
	if !IsNVMLSuccess(ret) {
		return pci.Identity{}, errors.New().Wrap(ErrPciInfoFailed, newNVMLError(ret)).WithData(h.index)
	}

	return pci.Identity{
		Domain:      info.Domain,
		Bus:         info.Bus,
		Device:      info.Device,
		PCIDeviceID: info.PciDeviceId,
	}, nil
}
