package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantengine/internal/domain"
)

const drawdownPlaces = 4

type DrawdownResult struct {
	MaxDrawdown decimal.Decimal
	PeakIndex   int
	TroughIndex int
	PeakValue   decimal.Decimal
	TroughValue decimal.Decimal

	CurrentDrawdown decimal.Decimal

	// Periods spent below the running peak across the whole series.
	UnderwaterPeriods int

	// Periods from the max-drawdown trough to the first value at or above
	// the peak that preceded it. Nil while that recovery has not happened.
	RecoveryPeriods *int
}

// Drawdown runs a single pass over the value series tracking the running
// peak and the deepest peak-to-trough decline seen so far, then derives the
// current drawdown and the recovery span for the worst episode. A strictly
// non-decreasing series reports zeros throughout.
func Drawdown(values domain.ValueSeries) (*DrawdownResult, error) {
	if err := values.Validate(); err != nil {
		return nil, err
	}

	runningPeak := values[0]
	runningPeakIndex := 0

	maxDrawdown := decimal.Zero
	peakIndex, troughIndex := 0, 0
	underwaterPeriods := 0

	for i := 1; i < len(values); i++ {
		v := values[i]
		if v.GreaterThan(runningPeak) {
			runningPeak = v
			runningPeakIndex = i
			continue
		}

		underwaterPeriods++
		drawdown := runningPeak.Sub(v).Div(runningPeak)
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
			peakIndex = runningPeakIndex
			troughIndex = i
		}
	}

	last := values[len(values)-1]
	currentDrawdown := decimal.Zero
	if last.LessThan(runningPeak) {
		currentDrawdown = runningPeak.Sub(last).Div(runningPeak)
	}

	var recoveryPeriods *int
	if maxDrawdown.IsZero() {
		noRecovery := 0
		recoveryPeriods = &noRecovery
	} else {
		peakValue := values[peakIndex]
		for i := troughIndex + 1; i < len(values); i++ {
			if values[i].GreaterThanOrEqual(peakValue) {
				periods := i - troughIndex
				recoveryPeriods = &periods
				break
			}
		}
	}

	return &DrawdownResult{
		MaxDrawdown:       maxDrawdown.Round(drawdownPlaces),
		PeakIndex:         peakIndex,
		TroughIndex:       troughIndex,
		PeakValue:         values[peakIndex],
		TroughValue:       values[troughIndex],
		CurrentDrawdown:   currentDrawdown.Round(drawdownPlaces),
		UnderwaterPeriods: underwaterPeriods,
		RecoveryPeriods:   recoveryPeriods,
	}, nil
}

type DrawdownEpisode struct {
	PeakIndex   int
	TroughIndex int
	// Nil when the series ends before the value regains the episode peak.
	RecoveryIndex *int
	Drawdown      decimal.Decimal
	// Periods from the peak to recovery, or to the end of the series for
	// an unrecovered episode.
	Duration int
}

// DrawdownHistory segments the series into discrete drawdown episodes whose
// depth exceeds threshold (open interval (0,1)). An episode opens at the
// peak preceding the first above-threshold decline and closes when the
// value regains that peak; an episode still open at the end of the series
// is reported with a nil recovery index.
func DrawdownHistory(values domain.ValueSeries, threshold decimal.Decimal) ([]DrawdownEpisode, error) {
	if threshold.LessThanOrEqual(decimal.Zero) || threshold.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("threshold %s outside (0,1): %w", threshold, domain.ErrInvalidThreshold)
	}
	if err := values.Validate(); err != nil {
		return nil, err
	}

	episodes := []DrawdownEpisode{}

	peak := values[0]
	peakIndex := 0
	inEpisode := false
	troughIndex := 0
	trough := values[0]

	for i := 1; i < len(values); i++ {
		v := values[i]
		if v.GreaterThanOrEqual(peak) {
			if inEpisode {
				recovery := i
				episodes = append(episodes, DrawdownEpisode{
					PeakIndex:     peakIndex,
					TroughIndex:   troughIndex,
					RecoveryIndex: &recovery,
					Drawdown:      peak.Sub(trough).Div(peak).Round(drawdownPlaces),
					Duration:      i - peakIndex,
				})
				inEpisode = false
			}
			peak = v
			peakIndex = i
			trough = v
			troughIndex = i
			continue
		}

		if v.LessThan(trough) {
			trough = v
			troughIndex = i
		}
		drawdown := peak.Sub(v).Div(peak)
		if !inEpisode && drawdown.GreaterThan(threshold) {
			inEpisode = true
		}
	}

	if inEpisode {
		episodes = append(episodes, DrawdownEpisode{
			PeakIndex:   peakIndex,
			TroughIndex: troughIndex,
			Drawdown:    peak.Sub(trough).Div(peak).Round(drawdownPlaces),
			Duration:    len(values) - 1 - peakIndex,
		})
	}

	return episodes, nil
}
