package levfaktura

import "fmt"

// DecodeError is returned when a SIE byte stream cannot be decoded at all:
// the file could not be read, or none of the probed encodings accepted the
// full byte stream. Per-voucher parse failures are not DecodeErrors — they
// are logged and the voucher is skipped.
type DecodeError struct {
	Path   string // file path, empty when decoding from an io.Reader directly
	Offset int64  // byte offset of the first rejected byte, -1 when not applicable
	err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode SIE stream at offset %d: %s", e.Offset, e.err)
	}
	return fmt.Sprintf("decode SIE file %q at offset %d: %s", e.Path, e.Offset, e.err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *DecodeError) Unwrap() error { return e.err }
