package report

import (
	"github.com/danpilch/nagkit/pkg/check"
	"github.com/danpilch/nagkit/pkg/state"
)

// HealthScore computes a 0-100 health score from check results.
// Starts at 100, -15 per critical, -5 per warning, -3 per unknown.
func HealthScore(results []check.Result) int {
	score := 100
	for _, r := range results {
		switch r.State {
		case state.Critical:
			score -= 15
		case state.Warning:
			score -= 5
		case state.Unknown:
			score -= 3
		}
	}
	return max(score, 0)
}

// ScoreLabel returns a human-readable label for a health score.
func ScoreLabel(score int) string {
	if score >= 80 {
		return "Healthy"
	}
	if score >= 50 {
		return "Degraded"
	}
	return "Critical"
}
