package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"digestbot/internal/app"
	"digestbot/internal/config"
)

func main() {
	var (
		envFile string
		cfgPath string
	)
	flag.StringVar(&envFile, "env", ".env", "dotenv file with credentials")
	flag.StringVar(&cfgPath, "config", "", "config file (overrides DIGEST_CONFIG)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	secrets, err := config.LoadEnv(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		if errors.Is(err, config.ErrMissingCredential) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	if cfgPath == "" {
		cfgPath = secrets.ConfigPath
	}

	cfgm := config.NewConfigManager(cfgPath)
	if _, err := cfgm.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfgm, secrets)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
