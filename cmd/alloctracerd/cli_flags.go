// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"flag"
	"os"

	"github.com/peterbourgon/ff/v3"

	"go.opentelemetry.io/ebpf-profiler/config"
)

const (
	defaultArgLibrary  = "libjvm.so"
	defaultArgOutput   = ""
	defaultArgInterval = config.DefaultInterval
)

var (
	libraryHelp  = "Substring matched against /proc/self/maps to find the JVM library to instrument."
	intervalHelp = "Mean bytes between recorded allocation samples (0 samples every allocation)."
	outputHelp   = "Path to a zstd-compressed, newline-delimited JSON sample file. " +
		"If empty, samples are logged instead."
)

type arguments struct {
	library  string
	interval uint64
	output   string

	fs *flag.FlagSet
}

func (args *arguments) SanityCheck() error {
	if args.library == "" {
		return errors.New("no JVM library name specified")
	}
	return nil
}

func parseArgs() (*arguments, error) {
	var args arguments

	fs := flag.NewFlagSet("alloctracerd", flag.ExitOnError)

	fs.StringVar(&args.library, "library", defaultArgLibrary, libraryHelp)
	fs.Uint64Var(&args.interval, "interval", defaultArgInterval, intervalHelp)
	fs.StringVar(&args.output, "output", defaultArgOutput, outputHelp)

	fs.Usage = func() {
		fs.PrintDefaults()
	}

	args.fs = fs

	return &args, ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("ALLOCTRACERD"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	)
}
