package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ReturnSeries is an ordered sequence of fractional period returns
// (0.05 == +5%) at a single period grain.
type ReturnSeries []decimal.Decimal

// ValueSeries is an ordered sequence of portfolio values over time. When a
// return series was derived from it, the value series is one element longer
// (N+1 values produce N returns).
type ValueSeries []decimal.Decimal

// Validate checks that the series can support variance-based statistics.
func (rs ReturnSeries) Validate() error {
	if len(rs) < 2 {
		return fmt.Errorf("need at least 2 returns, got %d: %w", len(rs), ErrInsufficientData)
	}
	return nil
}

// Validate checks length and positivity. Every drawdown and ratio
// computation divides by values from this series.
func (vs ValueSeries) Validate() error {
	if len(vs) < 2 {
		return fmt.Errorf("need at least 2 values, got %d: %w", len(vs), ErrInsufficientData)
	}
	for i, v := range vs {
		if !v.IsPositive() {
			return fmt.Errorf("value at index %d is %s: %w", i, v, ErrNonPositiveValues)
		}
	}
	return nil
}

// Returns derives the period-over-period return series from a value series.
func (vs ValueSeries) Returns() (ReturnSeries, error) {
	if err := vs.Validate(); err != nil {
		return nil, err
	}
	returns := make(ReturnSeries, 0, len(vs)-1)
	for i := 1; i < len(vs); i++ {
		returns = append(returns, vs[i].Sub(vs[i-1]).Div(vs[i-1]))
	}
	return returns, nil
}

// ParseReturnSeries converts raw string values (e.g. CSV cells) into a
// return series.
func ParseReturnSeries(raw []string) (ReturnSeries, error) {
	series := make(ReturnSeries, 0, len(raw))
	for i, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("element %d (%q): %w", i, s, ErrInvalidReturnFormat)
		}
		series = append(series, d)
	}
	return series, nil
}

// ParseValueSeries converts raw string values into a value series.
func ParseValueSeries(raw []string) (ValueSeries, error) {
	series := make(ValueSeries, 0, len(raw))
	for i, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("element %d (%q): %w", i, s, ErrInvalidValueFormat)
		}
		series = append(series, d)
	}
	return series, nil
}

// PeriodsPerYear infers the period grain of a series from its length.
// Anything with 250+ points is assumed daily, 50+ weekly, 10+ monthly,
// and shorter series quarterly.
func PeriodsPerYear(n int) int64 {
	switch {
	case n >= 250:
		return 252
	case n >= 50:
		return 52
	case n >= 10:
		return 12
	default:
		return 4
	}
}
