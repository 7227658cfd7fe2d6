package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Sheet1"

// XLSXWriter streams rows into a single-sheet workbook. The workbook is
// serialized into the underlying writer on Close.
type XLSXWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func NewXLSX(w io.Writer) (*XLSXWriter, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create xlsx stream: %w", err)
	}
	return &XLSXWriter{out: w, file: f, stream: sw}, nil
}

func (x *XLSXWriter) WriteRow(fields ...string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}

	values := make([]interface{}, len(fields))
	for i, field := range fields {
		// Счётчики храним числами, чтобы по ним можно было сортировать в Excel
		if n, err := strconv.Atoi(field); err == nil && x.row > 1 && i > 0 {
			values[i] = n
			continue
		}
		values[i] = field
	}
	return x.stream.SetRow(cell, values)
}

func (x *XLSXWriter) Close() error {
	defer x.file.Close()

	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("flush xlsx stream: %w", err)
	}
	if _, err := x.file.WriteTo(x.out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
