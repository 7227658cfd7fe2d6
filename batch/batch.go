package batch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/leqiyyy/CAIP/addrfreq"
	"github.com/leqiyyy/CAIP/addrset"
	"github.com/leqiyyy/CAIP/config"
	"github.com/leqiyyy/CAIP/report"
)

var (
	ErrInputOpen   = errors.New("cannot open input")
	ErrOutputWrite = errors.New("cannot write output")
)

// Runner executes one of the address tools end to end.
type Runner struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	// Status receives the distinct address count, one number per line.
	Status io.Writer
}

func NewRunner(logger *slog.Logger, status io.Writer) *Runner {
	return &Runner{
		Logger: logger,
		Clock:  clockwork.NewRealClock(),
		Status: status,
	}
}

// Summary is the result of a single run.
type Summary struct {
	Input     string
	Output    string
	Records   int
	Malformed int
	Distinct  int
	Elapsed   time.Duration
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("input", s.Input),
		slog.String("output", s.Output),
		slog.Int("records", s.Records),
		slog.Int("malformed", s.Malformed),
		slog.Int("distinct", s.Distinct),
		slog.Duration("elapsed", s.Elapsed),
	)
}

// Freq counts address occurrences of cfg.Input into cfg.Output.
func (r *Runner) Freq(cfg config.Freq) (Summary, error) {
	start := r.Clock.Now()
	summary := Summary{Input: cfg.Input, Output: cfg.Output}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return summary, err
	}
	order, err := addrfreq.ParseOrder(cfg.Order)
	if err != nil {
		return summary, err
	}

	in, err := os.Open(cfg.Input)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrInputOpen, err)
	}
	defer in.Close()

	r.Logger.Info("counting addresses", "input", cfg.Input, "strict", cfg.Strict)
	table, stats, err := addrfreq.Count(in, addrfreq.Options{Strict: cfg.Strict, Logger: r.Logger})
	if err != nil {
		return summary, fmt.Errorf("%s: %w", cfg.Input, err)
	}
	summary.Records = stats.Records
	summary.Malformed = stats.Malformed
	summary.Distinct = len(table)

	if err := r.status(summary.Distinct); err != nil {
		return summary, err
	}

	err = r.writeFile(cfg.Output, format, func(w report.Writer) error {
		return addrfreq.Write(w, table.Entries(order))
	})
	if err != nil {
		return summary, err
	}

	summary.Elapsed = r.Clock.Since(start)
	r.Logger.Info("address frequency written", "summary", summary)
	return summary, nil
}

// Dedup writes the sorted unique first-column addresses of cfg.Input into cfg.Output.
func (r *Runner) Dedup(cfg config.Dedup) (Summary, error) {
	start := r.Clock.Now()
	summary := Summary{Input: cfg.Input, Output: cfg.Output}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return summary, err
	}

	in, err := os.Open(cfg.Input)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrInputOpen, err)
	}
	defer in.Close()

	r.Logger.Info("collecting contract addresses", "input", cfg.Input, "strict", cfg.Strict)
	set, stats, err := addrset.Collect(in, addrset.Options{Strict: cfg.Strict, Logger: r.Logger})
	if err != nil {
		return summary, fmt.Errorf("%s: %w", cfg.Input, err)
	}
	summary.Records = stats.Records
	summary.Malformed = stats.Malformed
	summary.Distinct = set.Len()

	if err := r.status(summary.Distinct); err != nil {
		return summary, err
	}

	err = r.writeFile(cfg.Output, format, func(w report.Writer) error {
		return addrset.Write(w, set)
	})
	if err != nil {
		return summary, err
	}

	summary.Elapsed = r.Clock.Since(start)
	r.Logger.Info("contract address list written", "summary", summary, "duplicates", stats.Duplicates)
	return summary, nil
}

func (r *Runner) status(distinct int) error {
	if r.Status == nil {
		return nil
	}
	_, err := fmt.Fprintln(r.Status, distinct)
	return err
}

// writeFile truncates path and fills it through fill. Every failure on
// the way, close included, is reported as ErrOutputWrite.
func (r *Runner) writeFile(path string, format report.Format, fill func(report.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputWrite, cerr)
		}
	}()

	w, err := report.New(format, out)
	if err != nil {
		return err
	}
	if err := fill(w); err != nil {
		w.Close()
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}
	return nil
}
