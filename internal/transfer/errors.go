package transfer

import "fmt"

// ErrTransferDecode is returned when the data carried to the results view
// cannot be turned back into a result. The view treats it as "no result".
type ErrTransferDecode struct {
	error
}

func NewErrTransferDecode(err error) *ErrTransferDecode {
	return &ErrTransferDecode{fmt.Errorf("failed to decode transferred result: %w", err)}
}

func (e *ErrTransferDecode) Unwrap() error {
	return e.error
}
