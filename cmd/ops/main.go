// Package main provides the campaign operations CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	opscmd "github.com/louisbranch/campaignops/internal/cmd/ops"
	"github.com/louisbranch/campaignops/internal/platform/config"
)

func main() {
	log.SetPrefix("[OPS] ")
	cfg, err := opscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := opscmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, opscmd.ErrRefused) {
			config.ExitCodef(config.ExitRefused, "Refused: %v", err)
		}
		config.Exitf("Error: %v", err)
	}
}
