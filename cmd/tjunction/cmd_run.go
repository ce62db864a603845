package main

import (
	"encoding/json"
	"fmt"

	"github.com/anggasct/tjunction/pkg/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type runOptions struct {
	json    bool
	metrics bool
	trace   bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario and print every decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics after the report")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "write cycle spans to stderr")
	return cmd
}

func runScenario(cmd *cobra.Command, global *globalOptions, opts *runOptions, path string) error {
	ctx := cmd.Context()

	cfg, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	sc, err := sim.LoadScenario(path)
	if err != nil {
		return err
	}

	runnerOpts := []sim.Option{sim.WithLogger(logger)}

	reg := prometheus.NewRegistry()
	if opts.metrics {
		cfg.Metrics.Enabled = true
		runnerOpts = append(runnerOpts, sim.WithRegisterer(reg))
	}

	if opts.trace {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(cmd.ErrOrStderr()),
			stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer func() { _ = tp.Shutdown(ctx) }()
		runnerOpts = append(runnerOpts, sim.WithTracerProvider(tp))
	}

	report, err := sim.NewRunner(cfg, runnerOpts...).Run(ctx, sc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := report.WriteText(out); err != nil {
		return err
	}

	if opts.metrics {
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}

	if len(report.Violations) > 0 {
		return fmt.Errorf("%d invariant violations", len(report.Violations))
	}
	return nil
}
