package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leqiyyy/CAIP/batch"
	"github.com/leqiyyy/CAIP/config"
)

// flags хранит значения флагов, переопределяющих конфиг
type flags struct {
	configPath string
	input      string
	output     string
	format     string
	order      string
	strict     bool
	logLevel   string
}

func (f *flags) register(fs *pflag.FlagSet, withOrder bool) {
	fs.StringVarP(&f.configPath, "config", "c", "", "path to .yaml config")
	fs.StringVarP(&f.input, "input", "i", "", "input csv file")
	fs.StringVarP(&f.output, "output", "o", "", "output file")
	fs.StringVar(&f.format, "format", "", "output format: csv or xlsx")
	fs.BoolVar(&f.strict, "strict", false, "abort on malformed records instead of skipping them")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	if withOrder {
		fs.StringVar(&f.order, "order", "", "row order: none, address or count")
	}
}

// load reads the config file and applies the flags that were set explicitly.
func (f *flags) load(fs *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})), nil
}

// NewFreqCommand returns the address frequency counter command.
// With no flags it reads ./filtered_address.csv and writes
// filtered_address_freq_count.csv.
func NewFreqCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "addrfreq",
		Short:         "Count how often every address occurs in a filtered address file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			cfg, err := f.load(fs)
			if err != nil {
				return err
			}
			if fs.Changed("input") {
				cfg.Freq.Input = f.input
			}
			if fs.Changed("output") {
				cfg.Freq.Output = f.output
			}
			if fs.Changed("format") {
				cfg.Freq.Format = f.format
			}
			if fs.Changed("order") {
				cfg.Freq.Order = f.order
			}
			if fs.Changed("strict") {
				cfg.Freq.Strict = f.strict
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			_, err = batch.NewRunner(logger, cmd.OutOrStdout()).Freq(cfg.Freq)
			return err
		},
	}
	f.register(cmd.Flags(), true)
	return cmd
}

// NewDedupCommand returns the contract address deduplicator command.
func NewDedupCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "addrdedup",
		Short:         "Write the sorted unique contract addresses of a contract info file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			cfg, err := f.load(fs)
			if err != nil {
				return err
			}
			if fs.Changed("input") {
				cfg.Dedup.Input = f.input
			}
			if fs.Changed("output") {
				cfg.Dedup.Output = f.output
			}
			if fs.Changed("format") {
				cfg.Dedup.Format = f.format
			}
			if fs.Changed("strict") {
				cfg.Dedup.Strict = f.strict
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			_, err = batch.NewRunner(logger, cmd.OutOrStdout()).Dedup(cfg.Dedup)
			return err
		},
	}
	f.register(cmd.Flags(), false)
	return cmd
}
