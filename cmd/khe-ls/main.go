package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "khe-ls",
		Usage: "Repair search for high school timetables",
		Commands: []*cli.Command{
			solveCmd,
			checkCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

var logLevelFlag = &cli.StringFlag{
	Name:  "log-level",
	Value: "info",
	Usage: "specify the log level (debug, info, warn, error)",
}

// newLogger returns a text logger writing to stderr at the given level.
func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
