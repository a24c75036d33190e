package safety

// Confidence thresholds consumed by display layers; policy constants, not
// computed.
const (
	ThresholdSafe    = 0.8
	ThresholdWarning = 0.7
	ThresholdDanger  = 0.5
)

// baseConfidence reflects that a generated article always carries baseline
// uncertainty regardless of corroboration.
const baseConfidence = 0.40

// Score derives a heuristic 0-1 reliability estimate from the number of
// research sources and formatted citations. Monotonically non-decreasing in
// both arguments, capped at 1.0, never below the 0.40 base.
func Score(sourceCount, citationCount int) float64 {
	score := float64(sourceCount)*0.15 + float64(citationCount)*0.10 + baseConfidence
	if score > 1.0 {
		return 1.0
	}
	return score
}

// ConfidenceLevel buckets a score for display.
type ConfidenceLevel string

const (
	LevelSafe    ConfidenceLevel = "safe"
	LevelWarning ConfidenceLevel = "warning"
	LevelDanger  ConfidenceLevel = "danger"
)

// ConfidenceBanner is the display verdict for a confidence score.
type ConfidenceBanner struct {
	Level   ConfidenceLevel `json:"level"`
	Message string          `json:"message"`
}

// Banner maps a confidence score to its display level and fixed message.
func Banner(score float64) ConfidenceBanner {
	if score >= ThresholdSafe {
		return ConfidenceBanner{
			Level:   LevelSafe,
			Message: "This article has high confidence and is likely reliable.",
		}
	}
	if score >= ThresholdWarning {
		return ConfidenceBanner{
			Level:   LevelWarning,
			Message: "This article has moderate confidence and should be reviewed carefully.",
		}
	}
	return ConfidenceBanner{
		Level:   LevelDanger,
		Message: "This article has low confidence and may contain inaccuracies.",
	}
}
