package dataset

import (
	"gonum.org/v1/gonum/stat"
)

// GroupSummary holds the per-group statistics every downstream computation
// consumes. It is derived fresh from the record set on each analysis run.
type GroupSummary struct {
	Count        int
	Conversions  int
	ConversionRate float64

	TimeSpentMean   float64
	TimeSpentStdDev float64
	ClicksMean      float64
	ClicksStdDev    float64
	SessionsMean    float64

	TimeSpent []float64
	Clicks    []float64
}

// Summarize splits the records by group and computes counts, conversion
// rates and moments. Standard deviations are sample (n-1) estimates.
func Summarize(records []Record) (control, variant GroupSummary) {
	control = summarizeGroup(records, GroupControl)
	variant = summarizeGroup(records, GroupVariant)
	return control, variant
}

func summarizeGroup(records []Record, group Group) GroupSummary {
	s := GroupSummary{}
	var sessions []float64

	for _, r := range records {
		if r.Group != group {
			continue
		}
		s.Count++
		if r.Converted {
			s.Conversions++
		}
		s.TimeSpent = append(s.TimeSpent, r.TimeSpent)
		s.Clicks = append(s.Clicks, float64(r.Clicks))
		sessions = append(sessions, float64(r.Sessions))
	}

	if s.Count == 0 {
		return s
	}

	s.ConversionRate = float64(s.Conversions) / float64(s.Count)
	s.TimeSpentMean = stat.Mean(s.TimeSpent, nil)
	s.ClicksMean = stat.Mean(s.Clicks, nil)
	s.SessionsMean = stat.Mean(sessions, nil)
	if s.Count > 1 {
		s.TimeSpentStdDev = stat.StdDev(s.TimeSpent, nil)
		s.ClicksStdDev = stat.StdDev(s.Clicks, nil)
	}

	return s
}
