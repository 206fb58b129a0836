package engine

const (
	weeklyPatternThreshold   = 0.1
	seasonalPatternThreshold = 0.2
	strongSeasonalThreshold  = 0.5
)

// ProfileSeasonality buckets daily usage by weekday, day of month, month and
// quarter and derives per-dimension peaks and variance scores. Callers should
// feed at least 180 days of history when available; shorter series still
// produce a profile but flag reduced confidence.
func ProfileSeasonality(series DailySeries) SeasonalProfile {
	var (
		weekdaySums, weekdayCounts [7]float64
		domSums, domCounts         [31]float64
		monthSums, monthCounts     [12]float64
		quarterSums, quarterCounts [4]float64
	)

	for _, p := range series {
		wd := int(p.Date.Weekday()) // 0 = Sunday
		dom := p.Date.Day() - 1
		month := int(p.Date.Month()) - 1
		quarter := month / 3

		weekdaySums[wd] += p.Quantity
		weekdayCounts[wd]++
		domSums[dom] += p.Quantity
		domCounts[dom]++
		monthSums[month] += p.Quantity
		monthCounts[month]++
		quarterSums[quarter] += p.Quantity
		quarterCounts[quarter]++
	}

	weekday, weekdayVar := buildDimension(weekdaySums[:], weekdayCounts[:])
	dayOfMonth, _ := buildDimension(domSums[:], domCounts[:])
	month, monthVar := buildDimension(monthSums[:], monthCounts[:])
	quarter, _ := buildDimension(quarterSums[:], quarterCounts[:])

	profile := SeasonalProfile{
		Weekday:    weekday,
		DayOfMonth: dayOfMonth,
		Month:      month,
		Quarter:    quarter,

		HasWeeklyPattern:   weekdayVar > weeklyPatternThreshold,
		HasSeasonalPattern: monthVar > seasonalPatternThreshold,
		StrongSeasonality:  monthVar > strongSeasonalThreshold,

		HistoryDays:       len(series),
		ReducedConfidence: len(series) < seasonalLookbackDays,
	}

	// Weekday buckets 1..5 vs weekend buckets 0 and 6.
	var wkSum, wkN, weSum, weN float64
	for i := 0; i < 7; i++ {
		if weekdayCounts[i] == 0 {
			continue
		}
		avg := weekdaySums[i] / weekdayCounts[i]
		if i == 0 || i == 6 {
			weSum += avg
			weN++
		} else {
			wkSum += avg
			wkN++
		}
	}
	if wkN > 0 {
		profile.WeekdayAverage = round2(wkSum / wkN)
	}
	if weN > 0 {
		profile.WeekendAverage = round2(weSum / weN)
	}

	return profile
}

// buildDimension turns bucket sums/counts into averages, the peak bucket and
// a variance score computed over the buckets that saw any days. The unrounded
// variance is returned separately so pattern flags are not decided on a
// rounded figure.
func buildDimension(sums, counts []float64) (SeasonalDimension, float64) {
	averages := make([]float64, len(sums))
	observed := make([]float64, 0, len(sums))

	peakBucket := -1
	peakAverage := 0.0
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		avg := sums[i] / counts[i]
		averages[i] = round2(avg)
		observed = append(observed, avg)
		if peakBucket == -1 || avg > peakAverage {
			peakBucket = i
			peakAverage = avg
		}
	}

	variance := coefficientOfVariation(observed)
	return SeasonalDimension{
		Averages:      averages,
		PeakBucket:    peakBucket,
		PeakAverage:   round2(peakAverage),
		VarianceScore: round2(variance),
	}, variance
}
