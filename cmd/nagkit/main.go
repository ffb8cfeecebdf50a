// Command nagkit runs Nagios compatible checks against the local host and
// HTTP endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/collectors"
	"github.com/danpilch/nagkit/pkg/config"
	"github.com/danpilch/nagkit/pkg/debug"
	"github.com/danpilch/nagkit/pkg/output"
	"github.com/danpilch/nagkit/pkg/report"
	"github.com/danpilch/nagkit/pkg/state"
	"github.com/danpilch/nagkit/pkg/threshold"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options are the persistent flags shared by every check.
type options struct {
	warning    string
	critical   string
	timeout    int
	verbose    int
	maxLength  int
	format     string
	configPath string
	envFile    string
	timing     bool
}

// checkError is a failure of a named check run, reported under that name.
type checkError struct {
	name string
	err  error
}

func (e *checkError) Error() string { return e.err.Error() }

func (e *checkError) Unwrap() error { return e.err }

// app carries the streams and the exit code of one invocation.
type app struct {
	opts   options
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
	code   int
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.WarnLevel)

	a := &app{stdout: stdout, stderr: stderr, log: log}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		// Usage errors still follow the plugin protocol.
		name := "nagkit"
		var ce *checkError
		if errors.As(err, &ce) {
			name = ce.name
		}
		f := output.NewFormatter(name, a.opts.maxLength)
		f.AddState(state.Unknown.New(err.Error()))
		fmt.Fprint(stdout, f.String())
		return state.Unknown.ExitCode()
	}
	return a.code
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "nagkit",
		Short:         "Nagios compatible monitoring checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.opts.warning, "warning", "w", "", "warning range(s), comma separated")
	f.StringVarP(&a.opts.critical, "critical", "c", "", "critical range(s), comma separated")
	f.IntVarP(&a.opts.timeout, "timeout", "t", int(check.DefaultTimeout/time.Second), "abort after this many seconds, 0 for no limit")
	f.CountVarP(&a.opts.verbose, "verbose", "v", "increase output verbosity (repeatable)")
	f.IntVar(&a.opts.maxLength, "max-length", output.DefaultMaxLength, "maximum output line length")
	f.StringVar(&a.opts.format, "format", string(report.FormatNagios), "output format: nagios, table, json or tsv")
	f.StringVar(&a.opts.configPath, "config", "", "TOML or YAML config file")
	f.StringVar(&a.opts.envFile, "env-file", "", ".env file with NAGKIT_* overrides")
	f.BoolVar(&a.opts.timing, "timing", false, "print probe timings to stderr")

	root.AddCommand(
		a.loadCommand(),
		a.usersCommand(),
		a.memoryCommand(),
		a.diskCommand(),
		a.httpCommand(),
	)
	return root
}

// settings merges config file, environment and flags. Flags given on the
// command line win over the environment, which wins over the file.
func (a *app) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if a.opts.configPath != "" {
		loaded, err := config.Load(a.opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(a.opts.envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") || cfg.Timeout == 0 {
		cfg.Timeout = a.opts.timeout
	}
	if flags.Changed("verbose") || cfg.Verbose == 0 {
		cfg.Verbose = a.opts.verbose
	}
	if flags.Changed("max-length") || cfg.MaxLength == 0 {
		cfg.MaxLength = a.opts.maxLength
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative")
	}

	a.log.SetLevel(check.VerbosityLevel(cfg.Verbose))
	a.log.WithFields(logrus.Fields{
		"timeout":    cfg.Timeout,
		"verbose":    cfg.Verbose,
		"max_length": cfg.MaxLength,
	}).Debug("Settings resolved")
	return cfg, nil
}

// contexts builds one scalar context per name. Ranges given with -w/-c are
// distributed over names in order; otherwise a context from the config file
// is used when it exists. Config contexts not in names are added as well.
func (a *app) contexts(cmd *cobra.Command, cfg *config.Config, names ...string) ([]check.Context, error) {
	var out []check.Context
	for _, cc := range cfg.Contexts {
		ctx, err := cc.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, ctx)
	}

	fromFlags := cmd.Flags().Changed("warning") || cmd.Flags().Changed("critical")
	thresholds, err := threshold.CreateMulti(
		threshold.SplitMulti(a.opts.warning),
		threshold.SplitMulti(a.opts.critical),
		len(names),
	)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if _, ok := cfg.Context(name); ok && !fromFlags {
			continue
		}
		ctx, err := check.NewScalarContext(name, thresholds[i], "")
		if err != nil {
			return nil, err
		}
		out = append(out, ctx)
	}
	return out, nil
}

// execute runs c with every registered resource and renders the outcome in
// the selected format.
func (a *app) execute(cmd *cobra.Command, cfg *config.Config, c *check.Check, reg *collectors.Registry) error {
	format, err := report.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}

	var timed []*debug.TimedResource
	if a.opts.timing {
		reg.Wrap(func(r check.Resource) check.Resource {
			tr := debug.NewTimedResource(r)
			timed = append(timed, tr)
			return tr
		})
	}
	c.AddResources(reg.Resources()...)

	timeout := time.Duration(cfg.Timeout) * time.Second
	if format == report.FormatNagios {
		rt := &check.Runtime{Timeout: timeout, Verbose: cfg.Verbose, MaxLength: cfg.MaxLength}
		out, code := rt.Execute(cmd.Context(), c)
		fmt.Fprint(a.stdout, out)
		a.code = code
	} else if err := a.report(cmd.Context(), format, timeout, c); err != nil {
		return err
	}

	if a.opts.timing {
		timings := make([]debug.ProbeTiming, len(timed))
		for i, tr := range timed {
			timings[i] = tr.Timing()
			debug.DumpRawMetrics(a.stderr, tr.Name(), tr.Metrics())
		}
		debug.TimingReport(a.stderr, timings)
	}
	return nil
}

// report runs c directly and renders a human readable report. The check
// logs go to stderr.
func (a *app) report(ctx context.Context, format report.Format, timeout time.Duration, c *check.Check) error {
	c.SetLogger(a.log)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.Run(ctx); err != nil {
		return &checkError{name: c.Name(), err: check.AsTimeout(err, timeout)}
	}

	outcome := c.Outcome()
	a.log.WithField("state", outcome.Code()).Debug(strings.Join(outcome.Messages(), "; "))

	f := report.NewFormatter(format, a.stdout)
	f.SetShowScore(format == report.FormatTable)
	if err := f.Render(c.Name(), outcome.Code(), c.Results()); err != nil {
		return err
	}
	a.code = outcome.ExitCode()
	return nil
}
