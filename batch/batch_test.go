package batch

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/leqiyyy/CAIP/config"
	"github.com/leqiyyy/CAIP/records"
	"github.com/leqiyyy/CAIP/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRunner() (*Runner, *bytes.Buffer) {
	var status bytes.Buffer
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clockwork.NewFakeClock(),
		Status: &status,
	}
	return r, &status
}

func freqConfig(t *testing.T, input string) config.Freq {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "filtered_address.csv")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))

	cfg := config.Default().Freq
	cfg.Input = in
	cfg.Output = filepath.Join(dir, "filtered_address_freq_count.csv")
	return cfg
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "\n"))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestFreq(t *testing.T) {
	r, status := newTestRunner()
	cfg := freqConfig(t, "addr,count\nA,B\nA,C\n")

	summary, err := r.Freq(cfg)
	require.NoError(t, err)
	require.Equal(t, "3\n", status.String())
	require.Equal(t, 2, summary.Records)
	require.Equal(t, 3, summary.Distinct)
	require.Zero(t, summary.Malformed)

	lines := readLines(t, cfg.Output)
	require.Equal(t, "address,count", lines[0])
	require.ElementsMatch(t, []string{"A,2", "B,1", "C,1"}, lines[1:])
}

func TestFreqMalformedLine(t *testing.T) {
	r, status := newTestRunner()
	cfg := freqConfig(t, "addr,count\nA,B\nno-comma\nA,C\n")

	summary, err := r.Freq(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Malformed)
	require.Equal(t, "3\n", status.String())

	lines := readLines(t, cfg.Output)
	require.ElementsMatch(t, []string{"A,2", "B,1", "C,1"}, lines[1:])
}

func TestFreqStrict(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "addr,count\nA,B\nno-comma\n")
	cfg.Strict = true

	_, err := r.Freq(cfg)
	require.ErrorIs(t, err, records.ErrMalformedRecord)

	_, statErr := os.Stat(cfg.Output)
	require.True(t, os.IsNotExist(statErr), "output must not be created on failure")
}

func TestFreqHeaderOnly(t *testing.T) {
	for _, input := range []string{"addr,count\n", ""} {
		r, status := newTestRunner()
		cfg := freqConfig(t, input)

		summary, err := r.Freq(cfg)
		require.NoError(t, err)
		require.Zero(t, summary.Distinct)
		require.Equal(t, "0\n", status.String())
		require.Equal(t, []string{"address,count"}, readLines(t, cfg.Output))
	}
}

func TestFreqSumOfCounts(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "h\n0x1,0x2\n0x2,0x2\n0x3,0x1\n0x4,0x5\n")
	cfg.Order = "count"

	summary, err := r.Freq(cfg)
	require.NoError(t, err)

	lines := readLines(t, cfg.Output)
	require.Len(t, lines[1:], summary.Distinct)
	require.Equal(t, []string{"address,count", "0x2,3", "0x1,2", "0x3,1", "0x4,1", "0x5,1"}, lines)
}

func TestFreqIdempotent(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "h\nA,B\nC,A\nD,E\nB,B\n")

	_, err := r.Freq(cfg)
	require.NoError(t, err)
	first := readLines(t, cfg.Output)

	_, err = r.Freq(cfg)
	require.NoError(t, err)
	second := readLines(t, cfg.Output)

	sort.Strings(first)
	sort.Strings(second)
	require.Equal(t, first, second)
}

func TestFreqTruncatesOutput(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "h\nA,B\n")
	require.NoError(t, os.WriteFile(cfg.Output, []byte(strings.Repeat("stale\n", 100)), 0o644))

	_, err := r.Freq(cfg)
	require.NoError(t, err)
	require.Len(t, readLines(t, cfg.Output), 3)
}

func TestFreqMissingInput(t *testing.T) {
	r, status := newTestRunner()
	cfg := config.Default().Freq
	cfg.Input = filepath.Join(t.TempDir(), "missing.csv")
	cfg.Output = filepath.Join(t.TempDir(), "out.csv")

	_, err := r.Freq(cfg)
	require.ErrorIs(t, err, ErrInputOpen)
	require.Empty(t, status.String())

	_, statErr := os.Stat(cfg.Output)
	require.True(t, os.IsNotExist(statErr))
}

func TestFreqOutputFailure(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "h\nA,B\n")
	cfg.Output = filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv")

	_, err := r.Freq(cfg)
	require.ErrorIs(t, err, ErrOutputWrite)
}

func TestFreqBadOptions(t *testing.T) {
	r, _ := newTestRunner()

	cfg := freqConfig(t, "h\n")
	cfg.Format = "json"
	_, err := r.Freq(cfg)
	require.ErrorIs(t, err, report.ErrUnknownFormat)

	cfg = freqConfig(t, "h\n")
	cfg.Order = "random"
	_, err = r.Freq(cfg)
	require.Error(t, err)
}

func TestFreqXLSX(t *testing.T) {
	r, _ := newTestRunner()
	cfg := freqConfig(t, "addr,count\nA,B\nA,C\n")
	cfg.Format = "xlsx"
	cfg.Order = "address"

	_, err := r.Freq(cfg)
	require.NoError(t, err)

	f, err := excelize.OpenFile(cfg.Output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"address", "count"}, {"A", "2"}, {"B", "1"}, {"C", "1"}}, rows)
}

func TestDedup(t *testing.T) {
	r, status := newTestRunner()
	dir := t.TempDir()
	cfg := config.Default().Dedup
	cfg.Input = filepath.Join(dir, "contracts.csv")
	cfg.Output = filepath.Join(dir, "contract_address_list.csv")
	require.NoError(t, os.WriteFile(cfg.Input, []byte("address,name\n0xc,c\n0xa,a\n0xc,c2\n0xb,b\n"), 0o644))

	summary, err := r.Dedup(cfg)
	require.NoError(t, err)
	require.Equal(t, "3\n", status.String())
	require.Equal(t, 4, summary.Records)
	require.Equal(t, 3, summary.Distinct)
	require.Equal(t, []string{"contract_address", "0xa", "0xb", "0xc"}, readLines(t, cfg.Output))
}

func TestDedupMissingInput(t *testing.T) {
	r, _ := newTestRunner()
	cfg := config.Default().Dedup
	cfg.Input = filepath.Join(t.TempDir(), "missing.csv")

	_, err := r.Dedup(cfg)
	require.ErrorIs(t, err, ErrInputOpen)
}

func TestSummaryLog(t *testing.T) {
	var logs bytes.Buffer
	r, _ := newTestRunner()
	r.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	_, err := r.Freq(freqConfig(t, "h\nA,B\n"))
	require.NoError(t, err)
	require.Contains(t, logs.String(), `"distinct":2`)
	require.Contains(t, logs.String(), `"records":1`)
}
