package main

import (
	"fmt"
	"io"

	"github.com/rhartert/khe-ls/khe"
	"github.com/rhartert/khe-ls/parser"
	"github.com/urfave/cli/v2"
)

var checkCmd = &cli.Command{
	Name:    "check",
	Usage:   "Load an instance and describe the monitors of its initial solution",
	Aliases: []string{"c"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "instance",
			Required: true,
			Usage:    "specify the instance file (YAML or JSON)",
		},
		&cli.BoolFlag{
			Name:  "matching",
			Usage: "monitor resource demand with a bipartite matching",
		},
		logLevelFlag,
	},
	Action: func(ctx *cli.Context) error {
		logger, err := newLogger(ctx.String("log-level"))
		if err != nil {
			return err
		}
		ins, err := parser.ReadInstance(ctx.String("instance"))
		if err != nil {
			return err
		}
		s := khe.NewSoln(ins, khe.Config{
			Matching: ctx.Bool("matching"),
			Logger:   logger,
		})
		doCheck(ctx.App.Writer, s)
		return nil
	},
}

func doCheck(w io.Writer, s *khe.Soln) {
	fmt.Fprintln(w, s)
	for i := 0; i < s.ChildCount(); i++ {
		m := s.Child(i)
		fmt.Fprintf(w, "  %s deviation %s, lower bound %s\n", m, m.DeviationDescription(), m.LowerBound())
	}
	fmt.Fprintf(w, "lower bound: %s\n", s.LowerBound())
}
