package orchestrator

import (
	"strings"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

// ReliabilityScore rates how well ranking demand and marketplace supply
// agree, from 0 to 100. A rank of 0 means the rank is unknown.
func ReliabilityScore(k models.KeywordCandidate, s models.CompetitionSample) int {
	score := 50

	switch {
	case k.Rank <= 0:
	case k.Rank <= 10:
		score += 20
	case k.Rank <= 30:
		score += 10
	case k.Rank <= 50:
		score += 5
	}

	switch {
	case s.FastDeliveryCount == 0:
		score += 20
	case s.FastDeliveryCount < 5:
		score += 10
	case s.FastDeliveryCount > 10:
		score -= 10
	}

	switch {
	case s.OpportunityScore >= 80:
		score += 10
	case s.OpportunityScore >= 50:
		score += 5
	}

	if Rising(k.RankChange) {
		score += 10
	}
	return min(max(score, 0), 100)
}

// Rising reports whether a rank-change indicator shows movement.
func Rising(change string) bool {
	c := strings.ToLower(strings.TrimSpace(change))
	switch c {
	case "", "-", "0", "down":
		return false
	}
	return !strings.HasPrefix(c, "-")
}
