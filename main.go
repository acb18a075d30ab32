package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-instagram-publisher/actions/login"
	"github.com/PiotrWarzachowski/go-instagram-publisher/actions/post"
	"github.com/PiotrWarzachowski/go-instagram-publisher/actions/story"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := &cli.Command{
		Name:    "go-instagram-publisher",
		Usage:   "Log in, publish posts and stories; every command prints one JSON line",
		Version: "0.1.0",
		Commands: []*cli.Command{
			login.LoginCommand,
			post.PostCommand,
			story.StoryCommand,
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
