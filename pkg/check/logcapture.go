package check

import (
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogCollector is a logrus hook that keeps log messages so they can be
// emitted as long output.
type LogCollector struct {
	mu    sync.Mutex
	lines []string
}

// Levels implements logrus.Hook.
func (h *LogCollector) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *LogCollector) Fire(e *logrus.Entry) error {
	msg := strings.TrimRight(e.Message, "\n")
	if msg == "" {
		return nil
	}
	h.mu.Lock()
	h.lines = append(h.lines, msg)
	h.mu.Unlock()
	return nil
}

// Lines returns the collected messages in logging order.
func (h *LogCollector) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.lines)
}

// VerbosityLevel maps a -v count to a log level: 3 and above is debug, 2 is
// info and anything below is warning.
func VerbosityLevel(verbose int) logrus.Level {
	switch {
	case verbose >= 3:
		return logrus.DebugLevel
	case verbose == 2:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

// NewCaptureLogger returns a logger that writes nowhere and records messages
// at or above the level for verbose in the returned collector.
func NewCaptureLogger(verbose int) (*logrus.Logger, *LogCollector) {
	collector := &LogCollector{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(VerbosityLevel(verbose))
	logger.AddHook(collector)
	return logger, collector
}
