package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jgivc/relmirror/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	// Optional; the token may live in a .env file next to the binary.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(*cfgFileName).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "relmirror: %s\n", err)
		os.Exit(1)
	}
}
