package main

import (
	"log/slog"
	"os"

	"github.com/leqiyyy/CAIP/cli"
)

func main() {
	if err := cli.NewFreqCommand().Execute(); err != nil {
		slog.Error("addrfreq failed", "error", err)
		os.Exit(1)
	}
}
