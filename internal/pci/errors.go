package pci

import "codeberg.org/mutker/gputemps/internal/errors"

const (
	ErrEnumerationFailed = errors.ErrEnumeration
	ErrDeviceNotFound    = errors.ErrNotFound
	ErrRefreshFailed     = errors.ErrorCode("pci_refresh_failed")
	ErrCatalogClosed     = errors.ErrorCode("pci_catalog_closed")
	ErrMalformedSlot     = errors.ErrorCode("pci_malformed_slot")
)
