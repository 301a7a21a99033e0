package port

import "fmt"

// CorruptDataError reports a stored cart payload that could not be decoded.
type CorruptDataError struct {
	Key string
	Err error
}

func (e *CorruptDataError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("corrupt cart data: %v", e.Err)
	}
	return fmt.Sprintf("corrupt cart data at %q: %v", e.Key, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}
