package engine

import "math"

const (
	// anomalyZThreshold is the |z-score| above which a day is anomalous.
	anomalyZThreshold = 2.0
	// highSeverityZThreshold upgrades an anomaly to high severity.
	highSeverityZThreshold = 3.0
	// clusterGapDays is the maximum spacing between anomalies in one cluster.
	clusterGapDays = 3
	// minClusterSize is the smallest anomaly group reported as a cluster.
	minClusterSize = 2
	// minStreakDays is the shortest zero-usage run worth reporting.
	minStreakDays = 2
)

// DetectAnomalies flags days deviating beyond the z-score threshold from the
// series mean, groups nearby anomalies into clusters, finds zero-usage
// streaks and scores overall series stability. A zero standard deviation
// yields no anomalies.
func DetectAnomalies(series DailySeries) AnomalyReport {
	values := series.Values()
	m := mean(values)
	sd := stdDevPop(values)

	report := AnomalyReport{
		Mean:           round2(m),
		StdDev:         round2(sd),
		StabilityScore: stabilityScore(values),
	}
	report.ZeroStreaks = zeroStreaks(series)

	if sd == 0 {
		return report
	}

	var anomalies []Anomaly
	for _, p := range series {
		z := math.Abs(p.Quantity-m) / sd
		if z <= anomalyZThreshold {
			continue
		}

		a := Anomaly{
			Date:          p.Date,
			ObservedUsage: round2(p.Quantity),
			ExpectedMin:   round2(math.Max(0, m-anomalyZThreshold*sd)),
			ExpectedMax:   round2(m + anomalyZThreshold*sd),
			ZScore:        round2(z),
			Severity:      SeverityMedium,
			Type:          AnomalyDrop,
		}
		if z > highSeverityZThreshold {
			a.Severity = SeverityHigh
		}
		if p.Quantity > m {
			a.Type = AnomalySpike
		}
		anomalies = append(anomalies, a)
	}

	report.Isolated, report.Clusters = clusterAnomalies(anomalies)
	return report
}

// clusterAnomalies splits date-ordered anomalies into clusters (consecutive
// anomalies within clusterGapDays of each other, size >= minClusterSize) and
// the isolated remainder.
func clusterAnomalies(anomalies []Anomaly) ([]Anomaly, []AnomalyCluster) {
	if len(anomalies) == 0 {
		return nil, nil
	}

	var (
		isolated []Anomaly
		clusters []AnomalyCluster
	)

	group := []Anomaly{anomalies[0]}
	flush := func() {
		if len(group) >= minClusterSize {
			clusters = append(clusters, AnomalyCluster{
				StartDate: group[0].Date,
				EndDate:   group[len(group)-1].Date,
				Anomalies: group,
			})
		} else {
			isolated = append(isolated, group...)
		}
	}

	for _, a := range anomalies[1:] {
		prev := group[len(group)-1]
		gap := int(a.Date.Sub(prev.Date).Hours() / 24)
		if gap <= clusterGapDays {
			group = append(group, a)
			continue
		}
		flush()
		group = []Anomaly{a}
	}
	flush()

	return isolated, clusters
}

// zeroStreaks finds maximal runs of consecutive zero-usage days longer than
// one day.
func zeroStreaks(series DailySeries) []ZeroUsageStreak {
	var streaks []ZeroUsageStreak

	start := -1
	for i, p := range series {
		if p.Quantity == 0 {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			if length := i - start; length >= minStreakDays {
				streaks = append(streaks, ZeroUsageStreak{
					StartDate:    series[start].Date,
					EndDate:      series[i-1].Date,
					DurationDays: length,
				})
			}
			start = -1
		}
	}
	if start != -1 {
		if length := len(series) - start; length >= minStreakDays {
			streaks = append(streaks, ZeroUsageStreak{
				StartDate:    series[start].Date,
				EndDate:      series[len(series)-1].Date,
				DurationDays: length,
			})
		}
	}

	return streaks
}

// stabilityScore maps the coefficient of variation onto a 0-100 scale where
// 100 is perfectly steady usage.
func stabilityScore(values []float64) float64 {
	cv := coefficientOfVariation(values)
	return round2(math.Max(0, 100-cv*100))
}
