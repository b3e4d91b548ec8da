package utils

import (
	"errors"
	"io"
)

var ErrTooLarge = errors.New("content too large")

// ReadAllLimit reads r fully, failing with ErrTooLarge past max bytes.
func ReadAllLimit(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}
