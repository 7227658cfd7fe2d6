package report

import (
	"bufio"
	"io"
	"strings"
)

// CSVWriter writes fields joined by commas without any quoting,
// one newline-terminated line per row.
type CSVWriter struct {
	buf *bufio.Writer
	err error
}

func NewCSV(w io.Writer) *CSVWriter {
	return &CSVWriter{buf: bufio.NewWriter(w)}
}

func (c *CSVWriter) WriteRow(fields ...string) error {
	if c.err != nil {
		return c.err
	}
	if _, err := c.buf.WriteString(strings.Join(fields, ",")); err != nil {
		c.err = err
		return err
	}
	if err := c.buf.WriteByte('\n'); err != nil {
		c.err = err
		return err
	}
	return nil
}

func (c *CSVWriter) Close() error {
	if c.err != nil {
		return c.err
	}
	return c.buf.Flush()
}
