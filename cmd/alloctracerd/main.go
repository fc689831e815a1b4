// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Command alloctracerd is a standalone driver for the allocation tracer,
// useful for manual testing against a JVM that already has this process's
// shared-library form loaded, or for exercising the interception engine
// against a locally loaded libjvm.so during development. Production
// attachment happens through the c-shared build of this module loaded via
// -agentpath, not through this binary.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/ebpf-profiler/alloctracer"
	"go.opentelemetry.io/ebpf-profiler/config"
	"go.opentelemetry.io/ebpf-profiler/log"
	"go.opentelemetry.io/ebpf-profiler/sink"
)

func main() {
	if err := mainWithError(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func mainWithError() error {
	args, err := parseArgs()
	if err != nil {
		return fmt.Errorf("failed to parse arguments: %w", err)
	}
	if err = args.SanityCheck(); err != nil {
		return err
	}

	var recorder sink.Recorder = sink.LoggingRecorder{}
	if args.output != "" {
		fileRecorder, ferr := sink.NewFileRecorder(args.output)
		if ferr != nil {
			return fmt.Errorf("failed to open output file: %w", ferr)
		}
		defer fileRecorder.Close()
		recorder = fileRecorder
	}

	cfg := config.Args{
		Interval:    args.interval,
		LibraryName: args.library,
	}

	tracer, err := alloctracer.Start(cfg, recorder)
	if err != nil {
		return fmt.Errorf("failed to start allocation tracer: %w", err)
	}

	log.Infof("alloctracerd: tracing allocations in %s, press Ctrl-C to stop", args.library)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	tracer.Stop()
	return nil
}
