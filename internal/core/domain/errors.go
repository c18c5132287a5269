package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTemporary         = errors.New("temporary failure")
	ErrConversion        = errors.New("image conversion failed")
	ErrExtraction        = errors.New("pdf text extraction failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrDiscardRejected   = errors.New("upload can no longer be discarded")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
