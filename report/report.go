package report

import (
	"errors"
	"fmt"
	"io"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Writer writes rows of a summary table. Close flushes everything
// buffered and must be called exactly once.
type Writer interface {
	WriteRow(fields ...string) error
	Close() error
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// New returns a Writer that renders rows in the given format into w.
// Closing the Writer does not close w.
func New(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSV(w), nil
	case FormatXLSX:
		return NewXLSX(w)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
