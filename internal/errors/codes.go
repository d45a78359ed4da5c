package errors

// Common error codes
const (
	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Startup errors
	ErrPrivilege   ErrorCode = "privilege_denied"
	ErrEnumeration ErrorCode = "enumeration_failed"
	ErrSession     ErrorCode = "session_failed"
	ErrNoDevices   ErrorCode = "no_devices"

	// Per-tick errors
	ErrNotFound   ErrorCode = "device_not_found"
	ErrMap        ErrorCode = "register_map_failed"
	ErrRead       ErrorCode = "register_read_failed"
	ErrOutOfRange ErrorCode = "register_out_of_range"
	ErrCollect    ErrorCode = "collect_failed"

	// Application errors
	ErrTerminal    ErrorCode = "terminal_failed"
	ErrInvalidKind ErrorCode = "invalid_temperature_kind"
	ErrWriteOutput ErrorCode = "write_output_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrPrivilege:       "This program requires root privileges",
	ErrEnumeration:     "Failed to enumerate PCI devices",
	ErrSession:         "Failed to initialize NVML",
	ErrNoDevices:       "No NVIDIA GPUs found",
	ErrNotFound:        "No matching PCI device",
	ErrMap:             "Failed to map register memory",
	ErrRead:            "Failed to read register",
	ErrOutOfRange:      "Register value out of range",
	ErrCollect:         "Failed to collect GPU temperatures",
	ErrTerminal:        "Terminal error",
	ErrInvalidKind:     "Invalid temperature type",
	ErrWriteOutput:     "Failed to write output file",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
