package check

import (
	"context"
	"time"

	"github.com/danpilch/nagkit/pkg/output"
	"github.com/danpilch/nagkit/pkg/state"
)

// DefaultTimeout is the time budget of a check run.
const DefaultTimeout = 10 * time.Second

// Runtime executes a check under a time budget and renders the plugin
// output. Every execution yields exactly one well formed status line and a
// matching exit code, also when the check fails or times out.
type Runtime struct {
	// Timeout aborts the run; zero disables it.
	Timeout time.Duration
	// Verbose is the -v count. It selects the captured log level, and at 1
	// or more the summary's verbose lines are included.
	Verbose int
	// MaxLength is the output line length budget, 0 for the default.
	MaxLength int
}

// NewRuntime returns a runtime with the default timeout.
func NewRuntime() *Runtime {
	return &Runtime{Timeout: DefaultTimeout}
}

// Execute runs c and returns the rendered output and the exit code.
func (rt *Runtime) Execute(ctx context.Context, c *Check) (string, int) {
	logger, logs := NewCaptureLogger(rt.Verbose)
	c.SetLogger(logger)

	runCtx := ctx
	if rt.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, rt.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Run(runCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-runCtx.Done():
		err = runCtx.Err()
	}

	f := output.NewFormatter(c.Name(), rt.MaxLength)
	if err != nil {
		err = AsTimeout(err, rt.Timeout)
		logger.WithError(err).Debug("Check aborted")
		f.AddState(state.Unknown.New(err.Error()))
		if rt.Verbose > 0 {
			f.AddLongOutputLines(logs.Lines())
		}
		return f.String(), state.Unknown.ExitCode()
	}

	code := c.State()
	f.AddState(code.New(c.SummaryLine()))
	if rt.Verbose > 0 {
		f.AddLongOutputLines(c.VerboseLines())
	}
	f.AddLongOutputLines(logs.Lines())
	for label, token := range c.Performance() {
		f.AddPerformance(label, token)
	}
	return f.String(), code.ExitCode()
}
