package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	configKey    = "config"
	autoFlushKey = "auto-flush"
	initialKey   = "initial"
	printKey     = "print"
	metricsKey   = "metrics"
)

func main() {
	cmd := &cli.Command{
		Name:  "retypeset",
		Usage: "Drive the incremental typesetting scheduler over a mutation trace",
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "Replay a YAML mutation trace and report every render cycle",
				ArgsUsage: "<trace.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  configKey,
						Usage: "YAML typesetter configuration",
					},
					&cli.BoolFlag{
						Name:  autoFlushKey,
						Usage: "Deliver mutations and wait for the render after every step",
					},
					&cli.BoolFlag{
						Name:  initialKey,
						Usage: "Typeset the whole document before observing",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  printKey,
						Usage: "Print the final document",
					},
					&cli.BoolFlag{
						Name:  metricsKey,
						Usage: "Print scheduler metrics",
					},
				},
				Action: replay,
			},
			{
				Name:   "config",
				Usage:  "Print the effective typesetter configuration",
				Flags:  []cli.Flag{&cli.StringFlag{Name: configKey, Usage: "YAML typesetter configuration"}},
				Action: printConfig,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
