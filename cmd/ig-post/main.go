package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/PiotrWarzachowski/go-instagram-publisher/actions/post"
)

// Always exits 0; the JSON line on stdout carries success or failure.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := post.PostCommand
	cmd.Name = "ig-post"

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
