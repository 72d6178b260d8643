package main

import (
	"fmt"
	"os"

	dbcmd "github.com/dtnitsch/llm-web-summarizer/internal/db"
	"github.com/dtnitsch/llm-web-summarizer/internal/summarize"
	"github.com/dtnitsch/llm-web-summarizer/models"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	summarize.Version = version

	globalFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file",
			Value:   "config.yaml",
			EnvVars: []string{"LWS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "SQLite database path (relative paths sit next to the binary)",
			EnvVars: []string{"LWS_DB"},
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug output",
		},
		&cli.BoolFlag{
			Name:  "log-console",
			Usage: "Human readable logs instead of JSON",
		},
	}

	urlFlag := &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "Page or YouTube video URL (or pass it as the first argument)",
	}

	app := &cli.App{
		Name:    "lws",
		Usage:   "Summarize web pages and YouTube videos with Gemini",
		Version: version,
		Flags:   globalFlags,
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Aliases:   []string{"s"},
				Usage:     "Stream an AI summary of a page",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					urlFlag,
					&cli.StringFlag{
						Name:    "length",
						Aliases: []string{"l"},
						Usage:   fmt.Sprintf("Summary length: %s, %s or %s", models.SummaryLengthFive, models.SummaryLengthTen, models.SummaryLengthComprehensive),
						Value:   string(models.SummaryLengthFive),
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Gemini model (default " + models.DefaultModel + ")",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Request timeout, 0 for none",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory for exported files (default " + models.DefaultOutputDir + ")",
					},
					&cli.StringFlag{
						Name:  "html-out",
						Usage: "Also render the summary to this HTML file in the output directory",
					},
					&cli.BoolFlag{
						Name:  "pdf",
						Usage: "Export the finished summary as PDF",
					},
					&cli.BoolFlag{
						Name:    "interactive",
						Aliases: []string{"i"},
						Usage:   "Pick video timestamps to jump to after the summary",
					},
				},
				Action: summarize.SummarizeAction,
			},
			{
				Name:      "extract",
				Aliases:   []string{"e"},
				Usage:     "Extract page content and print it as YAML",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					urlFlag,
					&cli.BoolFlag{
						Name:  "summary-only",
						Usage: "Omit the extracted text",
					},
				},
				Action: summarize.ExtractAction,
			},
			{
				Name:      "seek",
				Usage:     "Print the link that opens a video at a timestamp",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					urlFlag,
					&cli.StringFlag{
						Name:     "time",
						Aliases:  []string{"t"},
						Usage:    "Offset as seconds or M:SS",
						Required: true,
					},
				},
				Action: summarize.SeekAction,
			},
			{
				Name:  "storage",
				Usage: "Inspect the background store",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the last extraction and its age",
						Action: dbcmd.StorageShowAction,
					},
					{
						Name:   "clear",
						Usage:  "Remove everything from the store",
						Action: dbcmd.StorageClearAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
