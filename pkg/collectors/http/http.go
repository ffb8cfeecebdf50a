// Package http probes an HTTP endpoint: response time, body size and
// optionally a value picked out of a JSON body.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/cookie"
)

// Metric names. Each is also the name of the context evaluating it.
const (
	MetricTime    = "time"
	MetricSize    = "size"
	MetricValue   = "value"
	MetricContent = "content"
	MetricRate    = "rate"
)

// ErrRateNeedsPath is returned when a rate is requested without a JSON path.
var ErrRateNeedsPath = errors.New("rate requires a JSON path")

// Options configure the probe.
type Options struct {
	// Path is a gjson path into the response body, e.g. "stats.requests".
	Path string
	// Expect is a string the body must contain.
	Expect string
	// Rate reports the change of the Path value per second since the
	// previous run.
	Rate bool
	// CookieDir holds the state of the previous run.
	CookieDir string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Resource fetches a URL.
type Resource struct {
	url  string
	opts Options
	now  func() time.Time
}

// New creates an HTTP resource for url.
func New(url string, opts Options) (*Resource, error) {
	if opts.Rate && opts.Path == "" {
		return nil, ErrRateNeedsPath
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Resource{url: url, opts: opts, now: time.Now}, nil
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return "http"
}

// Probe performs a GET request bounded by ctx.
func (r *Resource) Probe(ctx context.Context, log logrus.FieldLogger) ([]check.Metric, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := r.now()
	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read response: %w", err)
	}
	elapsed := r.now().Sub(start)
	log.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"bytes":  len(body),
	}).Infof("GET %s took %s", r.url, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	metrics := []check.Metric{
		{Name: MetricTime, Value: elapsed.Seconds(), Unit: "s", Min: check.Float(0)},
		{Name: MetricSize, Value: float64(len(body)), Unit: "B", Min: check.Float(0)},
	}

	if r.opts.Expect != "" {
		found := 0.0
		if bytes.Contains(body, []byte(r.opts.Expect)) {
			found = 1
		} else {
			log.Infof("body does not contain %q", r.opts.Expect)
		}
		metrics = append(metrics, check.Metric{Name: MetricContent, Value: found, Min: check.Float(0), Max: check.Float(1)})
	}

	if r.opts.Path == "" {
		return metrics, nil
	}
	result := gjson.GetBytes(body, r.opts.Path)
	if !result.Exists() {
		return nil, fmt.Errorf("path %q not found in response", r.opts.Path)
	}
	var value any = result.String()
	if result.Type == gjson.Number {
		value = result.Float()
	}
	metrics = append(metrics, check.Metric{Name: MetricValue, Value: value})

	if r.opts.Rate {
		num, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("path %q is not a number", r.opts.Path)
		}
		rate, ok, err := r.rate(num, log)
		if err != nil {
			return nil, err
		}
		if ok {
			metrics = append(metrics, check.Metric{Name: MetricRate, Value: rate})
		}
	}
	return metrics, nil
}

type sample struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// rate compares value with the sample stored by the previous run and stores
// the new one. The bool is false on the first run.
func (r *Resource) rate(value float64, log logrus.FieldLogger) (float64, bool, error) {
	c, err := cookie.Open(r.CookieName(), r.opts.CookieDir)
	if err != nil {
		return 0, false, err
	}

	var prev sample
	found, err := c.GetStruct(&prev)
	if err != nil {
		log.WithError(err).Warnf("discarding unreadable cookie %s", c.Path())
		found = false
	}

	now := r.now()
	if err := c.SetStruct(sample{Value: value, Time: now}); err != nil {
		c.Close()
		return 0, false, err
	}
	if err := c.Close(); err != nil {
		return 0, false, fmt.Errorf("cannot store cookie: %w", err)
	}

	if !found {
		log.Info("no previous sample, rate not available yet")
		return 0, false, nil
	}
	secs := now.Sub(prev.Time).Seconds()
	if secs <= 0 {
		log.Warnf("previous sample is not older than this one (%s)", prev.Time)
		return 0, false, nil
	}
	return (value - prev.Value) / secs, true, nil
}

// CookieName identifies the state file of this URL and path.
func (r *Resource) CookieName() string {
	h := fnv.New64a()
	h.Write([]byte(r.url))
	h.Write([]byte{0})
	h.Write([]byte(r.opts.Path))
	return fmt.Sprintf("nagkit-http-%016x.json", h.Sum64())
}
