package main

import (
	"flag"
	"fmt"
	"os"

	"termview/config"
	"termview/host"
)

func main() {
	shell := flag.String("shell", "", "program to run instead of the configured shell")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	if *shell != "" {
		cfg.Shell = *shell
	}

	log, closeLog, err := host.NewLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := host.New(cfg, log).Run(); err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
