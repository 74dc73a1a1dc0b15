package analytics

import "math"

// Term weights of the similarity score.
const (
	completionRateWeight = 3.0
	mostActiveDayWeight  = 2.0
	priorityWeight       = 2.5
	aiPercentageWeight   = 1.5

	// SimilarityThreshold is the score a pair must strictly exceed to be similar.
	SimilarityThreshold = 0.5

	closeRateDelta      = 0.1
	closeDistributionPc = 0.9
)

// Matched pattern labels.
const (
	PatternCompletionRate       = "completionRate"
	PatternMostActiveDay        = "mostActiveDay"
	PatternPriorityDistribution = "priorityDistribution"
	PatternAIGeneratedPct       = "aiGeneratedPercentage"
)

// Similarity is the comparison of two feature summaries.
type Similarity struct {
	// Score is in [0, 1]; 0 when no term could be compared.
	Score           float64
	MatchedPatterns []string
	// SharedMostActiveDay is set when both subjects peak on the same weekday.
	SharedMostActiveDay *DayOfWeek
}

// IsSimilar reports whether score passes the similarity threshold.
func IsSimilar(score float64) bool {
	return score > SimilarityThreshold
}

// Score compares a and b as a weighted sum of the terms both summaries define,
// normalized by the weight of those terms. Score(a, b) equals Score(b, a).
func Score(a, b *FeatureSummary) Similarity {
	var result Similarity
	if a == nil || b == nil {
		return result
	}

	var score, weight float64

	if a.CompletionRate != nil && b.CompletionRate != nil {
		diff := math.Abs(*a.CompletionRate - *b.CompletionRate)
		score += (1 - diff) * completionRateWeight
		weight += completionRateWeight
		if diff <= closeRateDelta {
			result.MatchedPatterns = append(result.MatchedPatterns, PatternCompletionRate)
		}
	}

	if a.MostActiveDay != nil && b.MostActiveDay != nil {
		if *a.MostActiveDay == *b.MostActiveDay {
			score += mostActiveDayWeight
			day := *a.MostActiveDay
			result.SharedMostActiveDay = &day
			result.MatchedPatterns = append(result.MatchedPatterns, PatternMostActiveDay)
		}
		weight += mostActiveDayWeight
	}

	if len(a.PriorityDistribution) > 0 && len(b.PriorityDistribution) > 0 {
		term := priorityTerm(a, b)
		score += term
		weight += priorityWeight
		if term >= closeDistributionPc*priorityWeight {
			result.MatchedPatterns = append(result.MatchedPatterns, PatternPriorityDistribution)
		}
	}

	if a.AIGeneratedPercentage != nil && b.AIGeneratedPercentage != nil {
		diff := math.Abs(*a.AIGeneratedPercentage - *b.AIGeneratedPercentage)
		score += (1 - diff) * aiPercentageWeight
		weight += aiPercentageWeight
		if diff <= closeRateDelta {
			result.MatchedPatterns = append(result.MatchedPatterns, PatternAIGeneratedPct)
		}
	}

	if weight > 0 {
		result.Score = score / weight
	}
	return result
}

// priorityTerm averages 1 - |shareA - shareB| over the union of labels, where a
// share is the label count over the subject's todo count, and scales it by the weight.
// Labels are visited in sorted order so the sum does not depend on argument order.
func priorityTerm(a, b *FeatureSummary) float64 {
	labels := sortedKeys(a.PriorityDistribution, b.PriorityDistribution)
	var sum float64
	for _, label := range labels {
		shareA := ratio(a.PriorityDistribution[label], a.TodoCount)
		shareB := ratio(b.PriorityDistribution[label], b.TodoCount)
		sum += 1 - math.Abs(shareA-shareB)
	}
	return sum / float64(len(labels)) * priorityWeight
}
