package pci_test

import (
	"path/filepath"
	"testing"

	"codeberg.org/mutker/gputemps/internal/errors"
	"codeberg.org/mutker/gputemps/internal/pci"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sysRoot = "/sys/bus/pci/devices"

func writeDevice(t *testing.T, fs afero.Fs, slot, vendor, product, resource string) {
	t.Helper()

	dir := filepath.Join(sysRoot, slot)
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "vendor"), []byte(vendor+"\n"), 0o444))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "device"), []byte(product+"\n"), 0o444))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "resource"), []byte(resource), 0o444))
}

func twoDeviceBus(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	writeDevice(t, fs, "0000:01:00.0", "0x1234", "0x10de",
		"0x00000000fb000000 0x00000000fbffffff 0x0000000000040200\n"+
			"0x00000000e0000000 0x00000000efffffff 0x000000000014220c\n")
	writeDevice(t, fs, "0000:02:00.0", "0x5678", "0x10de",
		"0x00000000fa000000 0x00000000faffffff 0x0000000000040200\n")

	return fs
}

func TestEnumerate(t *testing.T) {
	fs := twoDeviceBus(t)
	require.NoError(t, fs.MkdirAll(filepath.Join(sysRoot, "not-a-slot"), 0o755))

	catalog, err := pci.Enumerate(fs, sysRoot)
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	first := catalog.Records()[0]
	assert.Equal(t, "0000:01:00.0", first.Slot)
	assert.Equal(t, uint32(0), first.Domain)
	assert.Equal(t, uint32(1), first.Bus)
	assert.Equal(t, uint32(0), first.Device)
	assert.Equal(t, uint32(0), first.Function)
	assert.Zero(t, first.BaseAddress, "ids and base address are read lazily")
}

func TestEnumerateMissingRoot(t *testing.T) {
	_, err := pci.Enumerate(afero.NewMemMapFs(), sysRoot)
	require.Error(t, err)
	assert.Equal(t, errors.ErrEnumeration, errors.CodeOf(err))
}

func TestRefresh(t *testing.T) {
	catalog, err := pci.Enumerate(twoDeviceBus(t), sysRoot)
	require.NoError(t, err)

	r := catalog.Records()[0]
	require.NoError(t, r.Refresh())
	assert.Equal(t, uint16(0x1234), r.VendorID)
	assert.Equal(t, uint16(0x10de), r.ProductID)
	assert.Equal(t, uint64(0xfb000000), r.BaseAddress)
	assert.Equal(t, pci.Identity{Domain: 0, Bus: 1, Device: 0, PCIDeviceID: 0x10DE1234}, r.Identity())
}

func TestRefreshEmptyResource(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDevice(t, fs, "0000:03:00.0", "0x10de", "0x2204", "\n")

	catalog, err := pci.Enumerate(fs, sysRoot)
	require.NoError(t, err)
	require.Len(t, catalog.Records(), 1)

	err = catalog.Records()[0].Refresh()
	require.Error(t, err)
	assert.Equal(t, pci.ErrRefreshFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "empty resource file")
}

func TestCorrelate(t *testing.T) {
	catalog, err := pci.Enumerate(twoDeviceBus(t), sysRoot)
	require.NoError(t, err)

	r, err := catalog.Correlate(pci.Identity{Domain: 0, Bus: 2, Device: 0, PCIDeviceID: 0x10DE5678})
	require.NoError(t, err)
	assert.Equal(t, "0000:02:00.0", r.Slot)
	assert.Equal(t, uint64(0xfa000000), r.BaseAddress)

	_, err = catalog.Correlate(pci.Identity{Domain: 0, Bus: 3, Device: 0, PCIDeviceID: 0x10DE0000})
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestCorrelateRequiresAllFields(t *testing.T) {
	catalog, err := pci.Enumerate(twoDeviceBus(t), sysRoot)
	require.NoError(t, err)

	// Right location, wrong product/vendor composite.
	_, err = catalog.Correlate(pci.Identity{Domain: 0, Bus: 1, Device: 0, PCIDeviceID: 0x10DE5678})
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))

	// Right composite, wrong domain.
	_, err = catalog.Correlate(pci.Identity{Domain: 1, Bus: 1, Device: 0, PCIDeviceID: 0x10DE1234})
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestCorrelateSeesChangedIdentity(t *testing.T) {
	fs := twoDeviceBus(t)
	catalog, err := pci.Enumerate(fs, sysRoot)
	require.NoError(t, err)

	target := pci.NewIdentity(0, 2, 0, 0x5678, 0x10de)
	_, err = catalog.Correlate(target)
	require.NoError(t, err)

	// Simulate a hot-plug swap after enumeration.
	writeDevice(t, fs, "0000:02:00.0", "0x9999", "0x10de", "0x00000000fa000000 0 0\n")
	_, err = catalog.Correlate(target)
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestCorrelateSkipsUnreadableRecords(t *testing.T) {
	fs := twoDeviceBus(t)
	require.NoError(t, fs.Remove(filepath.Join(sysRoot, "0000:01:00.0", "resource")))

	catalog, err := pci.Enumerate(fs, sysRoot)
	require.NoError(t, err)

	_, err = catalog.Correlate(pci.NewIdentity(0, 1, 0, 0x1234, 0x10de))
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))

	r, err := catalog.Correlate(pci.NewIdentity(0, 2, 0, 0x5678, 0x10de))
	require.NoError(t, err)
	assert.Equal(t, "0000:02:00.0", r.Slot)
}

func TestClose(t *testing.T) {
	catalog, err := pci.Enumerate(twoDeviceBus(t), sysRoot)
	require.NoError(t, err)

	require.NoError(t, catalog.Close())
	require.NoError(t, catalog.Close())

	_, err = catalog.Correlate(pci.NewIdentity(0, 1, 0, 0x1234, 0x10de))
	assert.Equal(t, pci.ErrCatalogClosed, errors.CodeOf(err))

	var nilCatalog *pci.Catalog
	assert.NoError(t, nilCatalog.Close())
}
