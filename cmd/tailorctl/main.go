package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Printf("tailorctl: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	backendFlag := &cli.StringFlag{
		Name:    "backend",
		Usage:   "tailoring backend base URL",
		Value:   "http://localhost:8000",
		Sources: cli.EnvVars("TAILOR_API_URL"),
	}

	return &cli.Command{
		Name:  "tailorctl",
		Usage: "run the CV tailoring wizard from a terminal",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "upload a LinkedIn PDF with a job description and save both documents",
				Flags: []cli.Flag{
					backendFlag,
					&cli.StringFlag{
						Name:     "pdf",
						Usage:    "path to the LinkedIn profile PDF",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "job",
						Usage: "path to a file holding the job description (- for stdin)",
						Value: "-",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "directory the documents are written to",
						Value: ".",
					},
					&cli.BoolFlag{
						Name:  "skip-download",
						Usage: "only print the match analysis",
					},
				},
				Action: runAction,
			},
			{
				Name:  "download",
				Usage: "fetch one document generated by the last tailor call",
				Flags: []cli.Flag{
					backendFlag,
					&cli.StringFlag{
						Name:     "kind",
						Usage:    "cv or cover_letter",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "directory the document is written to",
						Value: ".",
					},
				},
				Action: downloadAction,
			},
		},
	}
}
