package trace

import "gonum.org/v1/gonum/stat"

// TraceSummary aggregates statistics from an AugmentationTrace.
type TraceSummary struct {
	TotalAttempts    int
	PassedCount      int
	FailedCount      int
	PassRate         float64
	UniqueReferences int
	MeanDetected     float64
	StdDevDetected   float64
	MeanTargetEpochs float64
	FailureReasons   map[string]int // reason → count of failed attempts
	RegionCounts     map[string]int // region → count of attempts
}

// Summarize computes aggregate statistics from an AugmentationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(at *AugmentationTrace) *TraceSummary {
	summary := &TraceSummary{
		FailureReasons: make(map[string]int),
		RegionCounts:   make(map[string]int),
	}
	if at == nil || len(at.Attempts) == 0 {
		return summary
	}

	refs := make(map[string]bool)
	detected := make([]float64, 0, len(at.Attempts))
	targets := make([]float64, 0, len(at.Attempts))
	for _, a := range at.Attempts {
		summary.TotalAttempts++
		if a.Passed {
			summary.PassedCount++
		} else {
			summary.FailedCount++
			summary.FailureReasons[a.Reason]++
		}
		summary.RegionCounts[a.Region]++
		refs[a.ReferenceID] = true
		detected = append(detected, float64(a.DetectedCount))
		targets = append(targets, float64(a.TargetEpochs))
	}

	summary.PassRate = float64(summary.PassedCount) / float64(summary.TotalAttempts)
	summary.UniqueReferences = len(refs)
	summary.MeanDetected, summary.StdDevDetected = stat.MeanStdDev(detected, nil)
	summary.MeanTargetEpochs = stat.Mean(targets, nil)
	if len(detected) < 2 {
		summary.StdDevDetected = 0
	}
	return summary
}
