package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/leqiyyy/CAIP/addrfreq"
	"github.com/leqiyyy/CAIP/report"
)

const (
	DefaultFreqInput   = "./filtered_address.csv"
	DefaultFreqOutput  = "filtered_address_freq_count.csv"
	DefaultDedupInput  = "./ContractInfo_queYixie/ContractInfo_queHenduo.csv"
	DefaultDedupOutput = "contract_address_list.csv"
)

var ErrInvalid = errors.New("invalid config")

// Config is the configuration of both address tools.
type Config struct {
	Freq  Freq  `yaml:"freq"`
	Dedup Dedup `yaml:"dedup"`
	Log   Log   `yaml:"log"`
}

// Freq configures the address frequency counter.
type Freq struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Format string `yaml:"format"`
	Order  string `yaml:"order"`
	Strict bool   `yaml:"strict"`
}

// Dedup configures the contract address deduplicator.
type Dedup struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Format string `yaml:"format"`
	Strict bool   `yaml:"strict"`
}

type Log struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Freq: Freq{
			Input:  DefaultFreqInput,
			Output: DefaultFreqOutput,
			Format: string(report.FormatCSV),
			Order:  string(addrfreq.OrderNone),
		},
		Dedup: Dedup{
			Input:  DefaultDedupInput,
			Output: DefaultDedupOutput,
			Format: string(report.FormatCSV),
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the YAML config at path on top of Default. An empty path
// or an empty file yields the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Если файл пустой, возвращаем конфигурацию по умолчанию
	if len(data) == 0 {
		return config, nil
	}

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.Freq.Input == "" || c.Freq.Output == "" {
		return fmt.Errorf("%w: freq input and output are required", ErrInvalid)
	}
	if c.Dedup.Input == "" || c.Dedup.Output == "" {
		return fmt.Errorf("%w: dedup input and output are required", ErrInvalid)
	}
	if _, err := report.ParseFormat(c.Freq.Format); err != nil {
		return fmt.Errorf("%w: freq: %w", ErrInvalid, err)
	}
	if _, err := report.ParseFormat(c.Dedup.Format); err != nil {
		return fmt.Errorf("%w: dedup: %w", ErrInvalid, err)
	}
	if _, err := addrfreq.ParseOrder(c.Freq.Order); err != nil {
		return fmt.Errorf("%w: freq: %w", ErrInvalid, err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}
