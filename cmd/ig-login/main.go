package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/PiotrWarzachowski/go-instagram-publisher/actions/login"
)

// Always exits 0; the JSON line on stdout carries success or failure.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := login.LoginCommand
	cmd.Name = "ig-login"

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
