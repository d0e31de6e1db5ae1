package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rhartert/khe-ls/khe"
	"github.com/rhartert/khe-ls/parser"
	"github.com/rhartert/khe-ls/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schoolFile = "../../parser/testdata/school.yaml"

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		_, err := newLogger(level)
		assert.NoError(t, err, level)
	}
	_, err := newLogger("verbose")
	assert.Error(t, err)
}

func TestDoCheck(t *testing.T) {
	ins, err := parser.ReadInstance(schoolFile)
	require.NoError(t, err)
	s := khe.NewSoln(ins, khe.Config{Matching: true})

	var buf bytes.Buffer
	doCheck(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "deviation")
	assert.Contains(t, out, "lower bound:")
}

func TestDoSolve(t *testing.T) {
	ins, err := parser.ReadInstance(schoolFile)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := khe.NewSoln(ins, khe.Config{Matching: true, Logger: logger})
	before := s.Cost()

	cfg := solver.DefaultConfig()
	cfg.Iterations = 100
	cfg.Logger = logger

	var buf bytes.Buffer
	require.NoError(t, doSolve(context.Background(), &buf, s, 2, cfg))

	out := buf.String()
	assert.Contains(t, out, "cost (before):     "+before.String())
	assert.Contains(t, out, "cost (after):")
	assert.Contains(t, out, "timetable:")
	assert.Contains(t, out, "Maths")
}

func TestDoSolve_invalidWorkers(t *testing.T) {
	ins, err := parser.ReadInstance(schoolFile)
	require.NoError(t, err)
	s := khe.NewSoln(ins, khe.Config{})

	err = doSolve(context.Background(), io.Discard, s, 0, solver.DefaultConfig())
	assert.Error(t, err)
}
