package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Harshitk-cp/concord/internal/bootstrap"
	"github.com/Harshitk-cp/concord/internal/buildconfig"
	"github.com/Harshitk-cp/concord/internal/config"
	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/Harshitk-cp/concord/internal/logging"
	"github.com/Harshitk-cp/concord/internal/profile"
	"github.com/Harshitk-cp/concord/internal/render"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "concord: %v\n", err)
		os.Exit(exitFailure)
	}

	logger, err := logging.New(config.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "concord: %v\n", err)
		os.Exit(exitFailure)
	}

	// An interrupt cancels the in-flight run; partial results are still printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, logger)
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitInvalid
	}

	switch args[0] {
	case "run", "orchestrate":
		return runConsensus(ctx, args[0], args[1:], stdin, stdout, stderr, logger)
	case "aggregate":
		return runAggregate(args[1:], stdin, stdout, stderr, logger)
	case "domains":
		return runDomains(stdout, stderr, logger)
	case "version", "--version", "-version":
		fmt.Fprintf(stdout, "concord %s\n", buildconfig.Get())
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "concord: unknown command %q\n", args[0])
		printUsage(stderr)
		return exitInvalid
	}
}

type outputFlags struct {
	format  string
	mode    string
	timeout time.Duration
}

func (o *outputFlags) register(fs *flag.FlagSet, withTimeout bool) {
	fs.StringVar(&o.format, "format", "json", "output format: json or text")
	fs.StringVar(&o.mode, "mode", "", "consensus mode override: majority, conservative, union, diversity")
	if withTimeout {
		fs.DurationVar(&o.timeout, "timeout", 0, "per-agent timeout override, e.g. 45s")
	}
}

func (o *outputFlags) validate() error {
	if o.format != "json" && o.format != "text" {
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidConfig, o.format)
	}
	if o.mode != "" {
		if _, err := domain.ParseConsensusMode(o.mode); err != nil {
			return err
		}
	}
	if o.timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", domain.ErrInvalidConfig)
	}
	return nil
}

func runConsensus(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) int {
	var opts outputFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs, true)
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if err := opts.validate(); err != nil {
		return fail(stdout, stderr, err)
	}

	var req domain.ConsensusRequest
	if err := decodeInput(stdin, &req); err != nil {
		return fail(stdout, stderr, err)
	}
	if opts.mode != "" {
		req.Mode = domain.ConsensusMode(opts.mode)
	}
	if opts.timeout > 0 {
		req.TimeoutSeconds = opts.timeout.Seconds()
	}
	if strings.TrimSpace(req.Domain) == "" {
		req.Domain = profile.DefaultDomain
	}

	components, err := bootstrap.Build(logger)
	if err != nil {
		return fail(stdout, stderr, err)
	}

	var resp *domain.ConsensusResponse
	if name == "orchestrate" {
		resp, err = components.Engine.Orchestrate(ctx, &req)
	} else {
		resp, err = components.Engine.Evaluate(ctx, &req)
	}
	if err != nil {
		return fail(stdout, stderr, err)
	}
	return emit(stdout, stderr, opts.format, resp)
}

func runAggregate(args []string, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) int {
	var opts outputFlags
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs, false)
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if err := opts.validate(); err != nil {
		return fail(stdout, stderr, err)
	}

	var in domain.ConsensusResponse
	if err := decodeInput(stdin, &in); err != nil {
		return fail(stdout, stderr, err)
	}
	if opts.mode != "" {
		in.Mode = domain.ConsensusMode(opts.mode)
	}
	if strings.TrimSpace(in.Domain) == "" {
		in.Domain = profile.DefaultDomain
	}

	components, err := bootstrap.Build(logger)
	if err != nil {
		return fail(stdout, stderr, err)
	}
	resp, err := components.Engine.Reduce(&in)
	if err != nil {
		return fail(stdout, stderr, err)
	}
	return emit(stdout, stderr, opts.format, resp)
}

func runDomains(stdout, stderr io.Writer, logger *zap.Logger) int {
	profiles, err := profile.Load(config.DomainProfilesPath())
	if err != nil {
		return fail(stdout, stderr, err)
	}
	logger.Debug("listing domains", zap.Int("count", len(profiles.Names())))
	return emitJSON(stdout, map[string]any{
		"default": profile.DefaultDomain,
		"domains": profiles.All(),
	})
}

func decodeInput(stdin io.Reader, v any) error {
	dec := json.NewDecoder(stdin)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode stdin: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func emit(stdout, stderr io.Writer, format string, resp *domain.ConsensusResponse) int {
	if format == "text" {
		if err := render.Summary(stdout, resp); err != nil {
			fmt.Fprintf(stderr, "concord: %v\n", err)
			return exitFailure
		}
		return exitOK
	}
	return emitJSON(stdout, resp)
}

func emitJSON(stdout io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitFailure
	}
	return exitOK
}

// fail reports configuration errors as JSON on stdout so pipelines can
// parse them; anything else goes to stderr.
func fail(stdout, stderr io.Writer, err error) int {
	if errors.Is(err, domain.ErrInvalidConfig) {
		emitJSON(stdout, map[string]string{"error": err.Error()})
		return exitInvalid
	}
	fmt.Fprintf(stderr, "concord: %v\n", err)
	return exitFailure
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: concord <command> [flags] < input.json

commands:
  run          dispatch a request to every agent and compute consensus
  orchestrate  dispatch a request and print the raw agent results only
  aggregate    compute consensus over results piped from orchestrate or run
  domains      list the loaded domain profiles
  version      print build information

flags (run, orchestrate, aggregate):
  --format json|text   output format (default json)
  --mode MODE          override the consensus mode
  --timeout DURATION   per-agent timeout (run, orchestrate)
`)
}
