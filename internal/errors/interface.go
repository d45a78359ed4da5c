package errors

// ErrorCode names a failure class. Codes are compared, never parsed.
type ErrorCode string

// Error is a coded failure. Two Errors match under Is when their codes
// are equal, so a bare New(code) works as a sentinel.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
	Is(target error) bool
}

// Factory builds Errors. Every constructor takes the code first.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
