package addrfreq

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/leqiyyy/CAIP/records"
	"github.com/leqiyyy/CAIP/report"
)

// Header is the first row of the frequency report.
var Header = []string{"address", "count"}

// Table maps an address to the number of times it was seen.
type Table map[string]int

// Record increments the count for address, inserting it when absent.
func (t Table) Record(address string) {
	t[address]++
}

// Total returns the sum of all counts.
func (t Table) Total() int {
	total := 0
	for _, cnt := range t {
		total += cnt
	}
	return total
}

type Order string

const (
	OrderNone    Order = "none"
	OrderAddress Order = "address"
	OrderCount   Order = "count"
)

var ErrUnknownOrder = errors.New("unknown order")

func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderNone, OrderAddress, OrderCount:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
}

type Entry struct {
	Address string
	Count   int
}

// Entries lists the table rows. OrderNone keeps map iteration order,
// OrderCount sorts by count descending and then by address.
func (t Table) Entries(order Order) []Entry {
	keys := maps.Keys(t)
	switch order {
	case OrderAddress:
		slices.Sort(keys)
	case OrderCount:
		slices.SortFunc(keys, func(a, b string) bool {
			if t[a] != t[b] {
				return t[a] > t[b]
			}
			return a < b
		})
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Address: k, Count: t[k]})
	}
	return entries
}

type Options struct {
	// Strict aborts on the first malformed line instead of skipping it.
	Strict bool
	Logger *slog.Logger
}

type Stats struct {
	Records   int // строки, учтённые в таблице
	Malformed int // пропущенные строки без запятой
}

// Count reads a filtered address file from r and counts both addresses
// of every data line. The header line is skipped.
func Count(r io.Reader, opts Options) (Table, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	table := make(Table)
	var stats Stats

	_, err := records.ForEach(r, func(line records.Line) error {
		pair, err := records.SplitPair(line.Text)
		if err != nil {
			if opts.Strict {
				return line.Malformed()
			}
			logger.Warn("skipping malformed record", "line", line.Number, "text", line.Text)
			stats.Malformed++
			return nil
		}
		table.Record(pair.First)
		table.Record(pair.Second)
		stats.Records++
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return table, stats, nil
}

// Write renders the header and entries into w. It does not close w.
func Write(w report.Writer, entries []Entry) error {
	if err := w.WriteRow(Header...); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteRow(e.Address, strconv.Itoa(e.Count)); err != nil {
			return err
		}
	}
	return nil
}
