package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/collectors"
	"github.com/danpilch/nagkit/pkg/collectors/disk"
	httpcollector "github.com/danpilch/nagkit/pkg/collectors/http"
	"github.com/danpilch/nagkit/pkg/collectors/load"
	"github.com/danpilch/nagkit/pkg/collectors/memory"
	"github.com/danpilch/nagkit/pkg/collectors/users"
	"github.com/danpilch/nagkit/pkg/threshold"
)

// checkFunc sets up the check for one subcommand.
type checkFunc func(cmd *cobra.Command, c *check.Check, reg *collectors.Registry) ([]string, error)

// runCheck resolves settings, lets setup register resources and returns the
// context names to threshold, then executes the check.
func (a *app) runCheck(name string, setup checkFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := a.settings(cmd)
		if err != nil {
			return err
		}
		c := check.New(name)
		reg := collectors.NewRegistry()
		names, err := setup(cmd, c, reg)
		if err != nil {
			return err
		}
		contexts, err := a.contexts(cmd, cfg, names...)
		if err != nil {
			return err
		}
		c.AddContexts(contexts...)
		return a.execute(cmd, cfg, c, reg)
	}
}

func (a *app) loadCommand() *cobra.Command {
	var perCPU bool
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Check the 1, 5 and 15 minute load averages",
		Long: "Check the load averages. Give up to three comma separated ranges " +
			"with -w and -c for load1, load5 and load15.",
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.runCheck("load", func(_ *cobra.Command, c *check.Check, reg *collectors.Registry) ([]string, error) {
		reg.Register(load.New(perCPU))
		c.SetSummary(load.Summary{})
		return load.Names, nil
	})
	cmd.Flags().BoolVarP(&perCPU, "percpu", "r", false, "divide the load averages by the number of CPUs")
	return cmd
}

func (a *app) usersCommand() *cobra.Command {
	var unique bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Check the number of logged in users",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runCheck("users", func(_ *cobra.Command, _ *check.Check, reg *collectors.Registry) ([]string, error) {
		reg.Register(users.New(unique))
		return []string{"users"}, nil
	})
	cmd.Flags().BoolVar(&unique, "unique", false, "count distinct users instead of sessions")
	return cmd
}

func (a *app) memoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Check memory and swap usage in percent",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runCheck("memory", func(_ *cobra.Command, _ *check.Check, reg *collectors.Registry) ([]string, error) {
		reg.Register(memory.New())
		return []string{"memory", "swap"}, nil
	})
	return cmd
}

func (a *app) diskCommand() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "disk",
		Short: "Check filesystem usage in percent",
		Long: "Check filesystem usage. -w and -c apply to the used percentage; " +
			"free space is reported as performance data.",
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.runCheck("disk", func(_ *cobra.Command, c *check.Check, reg *collectors.Registry) ([]string, error) {
		reg.Register(disk.New(paths...))
		free, err := check.NewScalarContext(disk.ContextFree, threshold.Threshold{}, "{{.Name}} is {{.ValueUnit}}")
		if err != nil {
			return nil, err
		}
		c.AddContexts(free)
		return []string{disk.ContextUsed}, nil
	})
	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "mount point to check (repeatable, default /)")
	return cmd
}

func (a *app) httpCommand() *cobra.Command {
	var (
		url  string
		opts httpcollector.Options
	)
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Check an HTTP endpoint",
		Long: "Fetch a URL. -w and -c take up to three ranges for the response time, " +
			"the value at --path and its --rate.",
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.runCheck("http", func(_ *cobra.Command, c *check.Check, reg *collectors.Registry) ([]string, error) {
		res, err := httpcollector.New(url, opts)
		if err != nil {
			return nil, err
		}
		reg.Register(res)

		size, err := check.NewScalarContext(httpcollector.MetricSize, threshold.Threshold{}, "")
		if err != nil {
			return nil, err
		}
		c.AddContexts(size)
		if opts.Expect != "" {
			content, err := expectContext()
			if err != nil {
				return nil, err
			}
			c.AddContexts(content)
		}
		return []string{httpcollector.MetricTime, httpcollector.MetricValue, httpcollector.MetricRate}, nil
	})

	f := cmd.Flags()
	f.StringVarP(&url, "url", "u", "", "URL to fetch")
	f.StringVar(&opts.Path, "path", "", "JSON path of a value in the response body")
	f.StringVar(&opts.Expect, "expect", "", "string the response body must contain")
	f.BoolVar(&opts.Rate, "rate", false, "report the change of the --path value per second")
	f.StringVar(&opts.CookieDir, "cookie-dir", defaultCookieDir(), "directory for state kept between runs")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

// expectContext turns a missing --expect string into a critical result.
func expectContext() (*check.ScalarContext, error) {
	th, err := threshold.New("", "1:")
	if err != nil {
		return nil, err
	}
	ctx, err := check.NewScalarContext(httpcollector.MetricContent, th, "")
	if err != nil {
		return nil, err
	}
	return ctx.WithMessages(threshold.Messages{
		threshold.KeyCritical: "expected content not found",
	}), nil
}

func defaultCookieDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "nagkit")
}
