package main

import (
	"log/slog"
	"os"

	"github.com/leqiyyy/CAIP/cli"
)

func main() {
	if err := cli.NewDedupCommand().Execute(); err != nil {
		slog.Error("addrdedup failed", "error", err)
		os.Exit(1)
	}
}
