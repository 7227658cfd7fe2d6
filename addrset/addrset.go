package addrset

import (
	"io"
	"log/slog"

	"github.com/google/btree"

	"github.com/leqiyyy/CAIP/records"
	"github.com/leqiyyy/CAIP/report"
)

// Header is the first row of the contract address list.
var Header = []string{"contract_address"}

const degree = 32

// Set is an ordered set of addresses.
type Set struct {
	tree *btree.BTreeG[string]
}

func New() *Set {
	return &Set{tree: btree.NewOrderedG[string](degree)}
}

// Insert adds address and reports whether it was not present before.
func (s *Set) Insert(address string) bool {
	_, replaced := s.tree.ReplaceOrInsert(address)
	return !replaced
}

func (s *Set) Has(address string) bool {
	return s.tree.Has(address)
}

func (s *Set) Len() int {
	return s.tree.Len()
}

// Addresses returns all addresses in ascending order.
func (s *Set) Addresses() []string {
	res := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(address string) bool {
		res = append(res, address)
		return true
	})
	return res
}

type Options struct {
	// Strict aborts on the first line without an address instead of skipping it.
	Strict bool
	Logger *slog.Logger
}

type Stats struct {
	Records    int
	Duplicates int
	Malformed  int
}

// Collect reads a contract info file from r and gathers the addresses from
// its first column. The header line is skipped.
func Collect(r io.Reader, opts Options) (*Set, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	set := New()
	var stats Stats

	_, err := records.ForEach(r, func(line records.Line) error {
		address, err := records.FirstField(line.Text)
		if err != nil {
			if opts.Strict {
				return line.Malformed()
			}
			logger.Warn("skipping record without address", "line", line.Number, "text", line.Text)
			stats.Malformed++
			return nil
		}
		stats.Records++
		if !set.Insert(address) {
			stats.Duplicates++
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return set, stats, nil
}

// Write renders the header and the sorted addresses into w. It does not close w.
func Write(w report.Writer, s *Set) error {
	if err := w.WriteRow(Header...); err != nil {
		return err
	}
	var err error
	s.tree.Ascend(func(address string) bool {
		err = w.WriteRow(address)
		return err == nil
	})
	return err
}
