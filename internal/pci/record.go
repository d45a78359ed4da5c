package pci

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/gputemps/internal/errors"
	"github.com/spf13/afero"
)

// Identity is the bus identity shared by the PCI catalog and NVML.
// PCIDeviceID packs the product id in the upper and the vendor id in the
// lower 16 bits, the layout NVML reports in nvmlPciInfo_t.pciDeviceId.
type Identity struct {
	Domain      uint32
	Bus         uint32
	Device      uint32
	PCIDeviceID uint32
}

// NewIdentity builds an Identity from separate vendor and product ids.
func NewIdentity(domain, bus, device uint32, vendor, product uint16) Identity {
	return Identity{
		Domain:      domain,
		Bus:         bus,
		Device:      device,
		PCIDeviceID: uint32(product)<<16 | uint32(vendor),
	}
}

func (id Identity) String() string {
	return fmt.Sprintf("%04x:%02x:%02x [%08x]", id.Domain, id.Bus, id.Device, id.PCIDeviceID)
}

// Record is one bus device. Location fields come from the sysfs entry
// name; ids and the base address are only valid after Refresh.
type Record struct {
	Slot        string
	Domain      uint32
	Bus         uint32
	Device      uint32
	Function    uint32
	VendorID    uint16
	ProductID   uint16
	BaseAddress uint64

	fs   afero.Fs
	path string
}

func newRecord(fs afero.Fs, root, slot string) (*Record, error) {
	r := &Record{
		Slot: slot,
		fs:   fs,
		path: filepath.Join(root, slot),
	}

	n, err := fmt.Sscanf(slot, "%x:%x:%x.%x", &r.Domain, &r.Bus, &r.Device, &r.Function)
	if err != nil || n != 4 {
		return nil, errors.New().WithData(ErrMalformedSlot, slot)
	}

	return r, nil
}

// Identity returns the record's bus identity as of the last Refresh.
func (r *Record) Identity() Identity {
	return NewIdentity(r.Domain, r.Bus, r.Device, r.VendorID, r.ProductID)
}

// Refresh re-reads the vendor and product ids and the BAR0 start address.
func (r *Record) Refresh() error {
	errFactory := errors.New()

	vendor, err := r.readHex("vendor", 16)
	if err != nil {
		return errFactory.Wrap(ErrRefreshFailed, err)
	}

	product, err := r.readHex("device", 16)
	if err != nil {
		return errFactory.Wrap(ErrRefreshFailed, err)
	}

	base, err := r.readBaseAddress()
	if err != nil {
		return errFactory.Wrap(ErrRefreshFailed, err)
	}

	r.VendorID = uint16(vendor)
	r.ProductID = uint16(product)
	r.BaseAddress = base

	return nil
}

func (r *Record) readHex(name string, bits int) (uint64, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(r.path, name))
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(strings.TrimSpace(string(data)), 0, bits)
}

// readBaseAddress parses the start column of the first line of the
// resource file, which describes BAR0.
func (r *Record) readBaseAddress() (uint64, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(r.path, "resource"))
	if err != nil {
		return 0, err
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, errors.New().WithMessage(ErrRefreshFailed, "empty resource file")
	}

	return strconv.ParseUint(fields[0], 0, 64)
}
