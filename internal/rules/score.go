package rules

import "github.com/sells-group/leadval-cli/internal/model"

// qualityWeights covers the checks that feed the data-quality score. The
// data_quality scan is deliberately excluded; it is reported but not scored.
var qualityWeights = map[string]float64{
	"email":        0.30,
	"phone":        0.30,
	"name":         0.15,
	"company":      0.10,
	"completeness": 0.15,
}

// qualityScore computes the weighted data-quality score, normalized by the
// weights actually present so a partial check map still lands on [0, 1].
func qualityScore(checks map[string]model.CheckResult) float64 {
	var totalScore, totalWeight float64
	for field, weight := range qualityWeights {
		check, ok := checks[field]
		if !ok {
			continue
		}
		totalScore += check.Score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// Combine fuses data quality and fraud into one overall score. Fraud is
// inverted first since a high fraud score means a worse lead.
func Combine(quality, fraudScore float64) float64 {
	return quality*0.7 + (1.0-fraudScore)*0.3
}

// StatusFor maps a 0-1 overall score onto the five-tier status.
func StatusFor(overall float64) model.Status {
	switch {
	case overall >= 0.9:
		return model.StatusExcellent
	case overall >= 0.8:
		return model.StatusGood
	case overall >= 0.6:
		return model.StatusFair
	case overall >= 0.4:
		return model.StatusPoor
	default:
		return model.StatusInvalid
	}
}

// QualityBucket maps a report-scale 0-10 quality score onto the five-tier
// status used by summary views. Distinct from StatusFor, which works on the
// engines' 0-1 scale.
func QualityBucket(score int) model.Status {
	switch {
	case score >= 9:
		return model.StatusExcellent
	case score >= 7:
		return model.StatusGood
	case score >= 5:
		return model.StatusFair
	case score >= 3:
		return model.StatusPoor
	default:
		return model.StatusInvalid
	}
}
